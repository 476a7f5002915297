package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/stylehub/stylehub-api/internal/domain/entity"
	domainRepo "github.com/stylehub/stylehub-api/internal/domain/repository"
	"github.com/stylehub/stylehub-api/pkg/pagination"
)

type productRepository struct {
	s *Store
}

func NewProductRepository(s *Store) domainRepo.ProductRepository {
	return &productRepository{s: s}
}

func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.slugTaken(product.Slug, uuid.Nil) {
		return domainRepo.ErrDuplicate
	}
	r.s.fill(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	stored := *product
	stored.Category = nil
	r.s.products[stored.ID] = stored
	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	p = r.s.withCategory(p)
	return &p, nil
}

func (r *productRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	products := make([]entity.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			products = append(products, r.s.withCategory(p))
		}
	}
	return products, nil
}

func (r *productRepository) GetBySlug(ctx context.Context, slug string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.products {
		if p.Slug == slug {
			p = r.s.withCategory(p)
			return &p, nil
		}
	}
	return nil, nil
}

func (r *productRepository) Update(ctx context.Context, product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.products[product.ID]
	if !ok {
		return domainRepo.ErrNotFound
	}
	if r.slugTaken(product.Slug, product.ID) {
		return domainRepo.ErrDuplicate
	}
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = r.s.now()
	stored := *product
	stored.Category = nil
	r.s.products[stored.ID] = stored
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.products, id)
	return nil
}

func (r *productRepository) List(ctx context.Context, params *domainRepo.ProductFilterParams) ([]entity.Product, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(params.Search))
	var matched []entity.Product
	for _, p := range r.s.products {
		if params.CategoryID != nil && (p.CategoryID == nil || *p.CategoryID != *params.CategoryID) {
			continue
		}
		if params.Section != "" && p.Section != params.Section {
			continue
		}
		if params.Featured != nil && p.Featured != *params.Featured {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		matched = append(matched, p)
	}
	sortNewestFirst(matched)

	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()
	page, total := pagination.Slice(matched, params.Pagination)

	out := make([]entity.Product, len(page))
	for i, p := range page {
		out[i] = r.s.withCategory(p)
	}
	return out, total, nil
}

func (r *productRepository) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, p := range r.s.products {
		if p.CategoryID != nil && *p.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}

func (r *productRepository) AtomicDecrementBatch(ctx context.Context, decrements map[uuid.UUID]int) ([]uuid.UUID, error) {
	if len(decrements) == 0 {
		return nil, nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var failedIDs []uuid.UUID
	for id, amount := range decrements {
		p, ok := r.s.products[id]
		if !ok || p.Inventory < amount {
			failedIDs = append(failedIDs, id)
		}
	}
	if len(failedIDs) > 0 {
		return failedIDs, nil
	}

	now := r.s.now()
	for id, amount := range decrements {
		p := r.s.products[id]
		p.Inventory -= amount
		p.UpdatedAt = now
		r.s.products[id] = p
	}
	return nil, nil
}

func (r *productRepository) AtomicIncrementBatch(ctx context.Context, increments map[uuid.UUID]int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	for id, amount := range increments {
		p, ok := r.s.products[id]
		if !ok {
			continue
		}
		p.Inventory += amount
		p.UpdatedAt = now
		r.s.products[id] = p
	}
	return nil
}

// slugTaken reports whether another product already uses slug. Callers
// must hold the lock.
func (r *productRepository) slugTaken(slug string, self uuid.UUID) bool {
	for id, p := range r.s.products {
		if p.Slug == slug && id != self {
			return true
		}
	}
	return false
}

func sortNewestFirst(products []entity.Product) {
	sort.Slice(products, func(i, j int) bool {
		if !products[i].CreatedAt.Equal(products[j].CreatedAt) {
			return products[i].CreatedAt.After(products[j].CreatedAt)
		}
		return products[i].Name < products[j].Name
	})
}
