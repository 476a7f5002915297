package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/stylehub/stylehub-api/internal/domain/entity"
	"github.com/stylehub/stylehub-api/internal/domain/enum"
	"github.com/stylehub/stylehub-api/pkg/pagination"
)

// ProductRepository defines the interface for product data operations
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	// GetByIDs retrieves multiple products in one call; missing IDs are absent from the result.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *ProductFilterParams) ([]entity.Product, int64, error)
	CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error)
	// AtomicDecrementBatch decrements inventory for every product or for none.
	// It returns the IDs that lacked stock; a non-empty result means nothing changed.
	AtomicDecrementBatch(ctx context.Context, decrements map[uuid.UUID]int) (failedIDs []uuid.UUID, err error)
	// AtomicIncrementBatch returns stock, e.g. when an order fails to persist.
	AtomicIncrementBatch(ctx context.Context, increments map[uuid.UUID]int) error
}

// ProductFilterParams contains filtering parameters for product queries
type ProductFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	CategoryID *uuid.UUID
	Section    enum.Section
	Featured   *bool
}

// CategoryRepository defines the interface for category data operations
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Category, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns categories ordered by name, optionally restricted to a section.
	List(ctx context.Context, section enum.Section) ([]entity.Category, error)
}
