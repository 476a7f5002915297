package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/stylehub/stylehub-api/internal/domain/entity"
	"github.com/stylehub/stylehub-api/internal/domain/enum"
	"github.com/stylehub/stylehub-api/internal/domain/repository"
	"github.com/stylehub/stylehub-api/pkg/apperror"
	"github.com/stylehub/stylehub-api/pkg/utils"
)

// CategoryService handles category-related operations
type CategoryService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
}

// NewCategoryService creates a new category service
func NewCategoryService(categoryRepo repository.CategoryRepository, productRepo repository.ProductRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo, productRepo: productRepo}
}

// CategoryInput is used for both create and full update.
type CategoryInput struct {
	Name        string
	Description string
	Section     enum.Section
	Image       string
	Featured    bool
}

func (in *CategoryInput) validate() error {
	var fieldErrors []apperror.FieldError
	if strings.TrimSpace(in.Name) == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "name", Message: "name is required"})
	}
	if !in.Section.IsValid() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "section", Message: "unknown section"})
	}
	if len(fieldErrors) > 0 {
		return apperror.NewValidationError(fieldErrors)
	}
	return nil
}

// CreateCategory creates a new category
func (s *CategoryService) CreateCategory(ctx context.Context, input *CategoryInput) (*entity.Category, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	category := &entity.Category{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Section:     input.Section,
		Image:       input.Image,
		Featured:    input.Featured,
	}
	category.Slug = utils.Slugify(category.Name)

	if err := s.ensureSlugFree(ctx, category.Slug, uuid.Nil); err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, categoryWriteError(err)
	}
	return category, nil
}

// GetCategory resolves a category by ID or slug.
func (s *CategoryService) GetCategory(ctx context.Context, idOrSlug string) (*entity.Category, error) {
	var (
		category *entity.Category
		err      error
	)
	if id, parseErr := utils.ParseUUID(idOrSlug); parseErr == nil {
		category, err = s.categoryRepo.GetByID(ctx, id)
	} else {
		category, err = s.categoryRepo.GetBySlug(ctx, idOrSlug)
	}
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, apperror.NewNotFoundError("Category")
	}
	return category, nil
}

func (s *CategoryService) ListCategories(ctx context.Context, section enum.Section) ([]entity.Category, error) {
	if !section.IsValid() {
		return nil, apperror.NewBadRequestError("Unknown section")
	}
	categories, err := s.categoryRepo.List(ctx, section)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []entity.Category{}
	}
	return categories, nil
}

// UpdateCategory replaces a category's fields. Products keep pointing at it
// and pick up the new name.
func (s *CategoryService) UpdateCategory(ctx context.Context, id uuid.UUID, input *CategoryInput) (*entity.Category, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, apperror.NewNotFoundError("Category")
	}

	category.Name = strings.TrimSpace(input.Name)
	category.Slug = utils.Slugify(category.Name)
	category.Description = input.Description
	category.Section = input.Section
	category.Image = input.Image
	category.Featured = input.Featured

	if err := s.ensureSlugFree(ctx, category.Slug, category.ID); err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, categoryWriteError(err)
	}
	return category, nil
}

// DeleteCategory refuses to remove a category that still has products.
func (s *CategoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if category == nil {
		return apperror.NewNotFoundError("Category")
	}

	n, err := s.productRepo.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperror.NewConflictError("Category still has products")
	}
	return s.categoryRepo.Delete(ctx, id)
}

func (s *CategoryService) ensureSlugFree(ctx context.Context, slug string, self uuid.UUID) error {
	existing, err := s.categoryRepo.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != self {
		return apperror.NewConflictError("Category with this name already exists")
	}
	return nil
}

func categoryWriteError(err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return apperror.NewConflictError("Category with this name already exists")
	case errors.Is(err, repository.ErrNotFound):
		return apperror.NewNotFoundError("Category")
	}
	return err
}
