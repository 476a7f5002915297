package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stylehub/stylehub-api/internal/domain/entity"
	"github.com/stylehub/stylehub-api/internal/domain/enum"
	"github.com/stylehub/stylehub-api/internal/domain/repository"
	"github.com/stylehub/stylehub-api/pkg/apperror"
	"github.com/stylehub/stylehub-api/pkg/pagination"
	"github.com/stylehub/stylehub-api/pkg/utils"
)

// ProductService handles product-related operations
type ProductService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

// NewProductService creates a new product service
func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

// CreateProductInput represents the create product input. Details is the raw
// JSON payload; it is decoded here so that every write path shares one
// validation.
type CreateProductInput struct {
	CategoryID       uuid.UUID
	Name             string
	Description      string
	ShortDescription string
	Price            decimal.Decimal
	CompareAtPrice   *decimal.Decimal
	Section          enum.Section
	Featured         bool
	IsNew            bool
	BestSeller       bool
	Inventory        int
	Details          json.RawMessage
}

// UpdateProductInput carries the fields to change; nil fields are kept.
type UpdateProductInput struct {
	CategoryID       *uuid.UUID
	Name             *string
	Description      *string
	ShortDescription *string
	Price            *decimal.Decimal
	CompareAtPrice   *decimal.Decimal
	Section          *enum.Section
	Featured         *bool
	IsNew            *bool
	BestSeller       *bool
	Inventory        *int
	Details          json.RawMessage
}

// CreateProduct creates a new product
func (s *ProductService) CreateProduct(ctx context.Context, input *CreateProductInput) (*entity.Product, error) {
	details, err := decodeDetails(input.Details)
	if err != nil {
		return nil, err
	}

	product := &entity.Product{
		Name:             strings.TrimSpace(input.Name),
		Description:      input.Description,
		ShortDescription: input.ShortDescription,
		Price:            input.Price,
		CompareAtPrice:   input.CompareAtPrice,
		Section:          input.Section,
		Featured:         input.Featured,
		IsNew:            input.IsNew,
		BestSeller:       input.BestSeller,
		Inventory:        input.Inventory,
		Details:          details,
	}
	if err := validateProduct(product, input.CategoryID); err != nil {
		return nil, err
	}
	if err := s.assignCategory(ctx, product, input.CategoryID); err != nil {
		return nil, err
	}

	product.Slug = utils.Slugify(product.Name)
	if err := s.ensureSlugFree(ctx, product.Slug, uuid.Nil); err != nil {
		return nil, err
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, productWriteError(err)
	}
	return s.productRepo.GetByID(ctx, product.ID)
}

// GetProduct resolves a product by ID or, failing that, by slug.
func (s *ProductService) GetProduct(ctx context.Context, idOrSlug string) (*entity.Product, error) {
	var (
		product *entity.Product
		err     error
	)
	if id, parseErr := utils.ParseUUID(idOrSlug); parseErr == nil {
		product, err = s.productRepo.GetByID(ctx, id)
	} else {
		product, err = s.productRepo.GetBySlug(ctx, idOrSlug)
	}
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

// ListProducts lists products with filtering
func (s *ProductService) ListProducts(ctx context.Context, params *repository.ProductFilterParams) (*pagination.PaginatedResult[entity.Product], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()

	products, total, err := s.productRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(products, pag), nil
}

// UpdateProduct updates an existing product. Renaming regenerates the slug.
func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, input *UpdateProductInput) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}

	if input.Details != nil {
		details, err := decodeDetails(input.Details)
		if err != nil {
			return nil, err
		}
		product.Details = details
	}

	categoryID := uuid.Nil
	if product.CategoryID != nil {
		categoryID = *product.CategoryID
	}
	if input.CategoryID != nil {
		categoryID = *input.CategoryID
	}
	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.ShortDescription != nil {
		product.ShortDescription = *input.ShortDescription
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.CompareAtPrice != nil {
		product.CompareAtPrice = input.CompareAtPrice
	}
	if input.Section != nil {
		product.Section = *input.Section
	}
	if input.Featured != nil {
		product.Featured = *input.Featured
	}
	if input.IsNew != nil {
		product.IsNew = *input.IsNew
	}
	if input.BestSeller != nil {
		product.BestSeller = *input.BestSeller
	}
	if input.Inventory != nil {
		product.Inventory = *input.Inventory
	}

	if err := validateProduct(product, categoryID); err != nil {
		return nil, err
	}
	if err := s.assignCategory(ctx, product, categoryID); err != nil {
		return nil, err
	}

	product.Slug = utils.Slugify(product.Name)
	if err := s.ensureSlugFree(ctx, product.Slug, product.ID); err != nil {
		return nil, err
	}

	product.Category = nil
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, productWriteError(err)
	}
	return s.productRepo.GetByID(ctx, product.ID)
}

// DeleteProduct deletes a product
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if product == nil {
		return apperror.NewNotFoundError("Product")
	}
	return s.productRepo.Delete(ctx, id)
}

// assignCategory sets the category reference and label. A product without
// an explicit section inherits its category's.
func (s *ProductService) assignCategory(ctx context.Context, product *entity.Product, categoryID uuid.UUID) error {
	category, err := s.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		return err
	}
	if category == nil {
		return apperror.NewNotFoundError("Category")
	}
	product.CategoryID = &category.ID
	product.CategoryName = category.Name
	if product.Section == enum.SectionNone {
		product.Section = category.Section
	}
	return nil
}

func (s *ProductService) ensureSlugFree(ctx context.Context, slug string, self uuid.UUID) error {
	existing, err := s.productRepo.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != self {
		return apperror.NewConflictError("Product with this name already exists")
	}
	return nil
}

func validateProduct(p *entity.Product, categoryID uuid.UUID) error {
	var fieldErrors []apperror.FieldError
	if p.Name == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "name", Message: "name is required"})
	}
	if !p.Price.IsPositive() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "price", Message: "price must be greater than zero"})
	}
	if p.CompareAtPrice != nil && p.CompareAtPrice.IsNegative() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "compare_at_price", Message: "compare_at_price must not be negative"})
	}
	if p.Inventory < 0 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "inventory", Message: "inventory must not be negative"})
	}
	if !p.Section.IsValid() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "section", Message: "unknown section"})
	}
	if categoryID == uuid.Nil {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "category_id", Message: "category is required"})
	}
	if len(fieldErrors) > 0 {
		return apperror.NewValidationError(fieldErrors)
	}
	return nil
}

func decodeDetails(raw json.RawMessage) (entity.ProductDetails, error) {
	details, err := entity.DecodeProductDetails(raw)
	if err != nil {
		return entity.ProductDetails{}, apperror.NewUnprocessableError(err.Error(), err)
	}
	return details, nil
}

func productWriteError(err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return apperror.NewConflictError("Product with this name already exists")
	case errors.Is(err, repository.ErrNotFound):
		return apperror.NewNotFoundError("Product")
	}
	return err
}
