package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stylehub/stylehub-api/internal/domain/entity"
	"github.com/stylehub/stylehub-api/internal/domain/enum"
	"github.com/stylehub/stylehub-api/pkg/pagination"
)

// OrderRepository defines the interface for order data operations. Orders
// are append-only.
type OrderRepository interface {
	// Create stores the order together with its items.
	Create(ctx context.Context, order *entity.Order) error
	// GetByID returns the order with its items, or nil when it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	List(ctx context.Context, params *OrderFilterParams) ([]entity.Order, int64, error)
}

// OrderFilterParams contains filtering parameters for order queries
type OrderFilterParams struct {
	Pagination *pagination.PaginationParams
	Status     *enum.OrderStatus
	CustomerID *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
}
