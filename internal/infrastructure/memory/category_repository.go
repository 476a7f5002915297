package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/stylehub/stylehub-api/internal/domain/entity"
	"github.com/stylehub/stylehub-api/internal/domain/enum"
	domainRepo "github.com/stylehub/stylehub-api/internal/domain/repository"
)

type categoryRepository struct {
	s *Store
}

func NewCategoryRepository(s *Store) domainRepo.CategoryRepository {
	return &categoryRepository{s: s}
}

func (r *categoryRepository) Create(ctx context.Context, category *entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.slugTaken(category.Slug, uuid.Nil) {
		return domainRepo.ErrDuplicate
	}
	r.s.fill(&category.ID, &category.CreatedAt, &category.UpdatedAt)
	r.s.categories[category.ID] = *category
	return nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.categories[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *categoryRepository) GetBySlug(ctx context.Context, slug string) (*entity.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, c := range r.s.categories {
		if c.Slug == slug {
			return &c, nil
		}
	}
	return nil, nil
}

// Update also refreshes the denormalised category label on its products.
func (r *categoryRepository) Update(ctx context.Context, category *entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.categories[category.ID]
	if !ok {
		return domainRepo.ErrNotFound
	}
	if r.slugTaken(category.Slug, category.ID) {
		return domainRepo.ErrDuplicate
	}
	category.CreatedAt = existing.CreatedAt
	category.UpdatedAt = r.s.now()
	r.s.categories[category.ID] = *category

	for id, p := range r.s.products {
		if p.CategoryID != nil && *p.CategoryID == category.ID {
			p.CategoryName = category.Name
			r.s.products[id] = p
		}
	}
	return nil
}

func (r *categoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.categories, id)
	return nil
}

func (r *categoryRepository) List(ctx context.Context, section enum.Section) ([]entity.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	categories := make([]entity.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		if section != "" && c.Section != section {
			continue
		}
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

func (r *categoryRepository) slugTaken(slug string, self uuid.UUID) bool {
	for id, c := range r.s.categories {
		if c.Slug == slug && id != self {
			return true
		}
	}
	return false
}
