package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stylehub/stylehub-api/internal/domain/entity"
)

// StoreTotals are all-time counters for the admin dashboard.
type StoreTotals struct {
	Products  int64
	Orders    int64
	Customers int64
	Revenue   decimal.Decimal
}

// AnalyticsRepository loads the read-only snapshots that reports are
// computed from.
type AnalyticsRepository interface {
	// OrdersSince returns orders created at or after since, with their items.
	OrdersSince(ctx context.Context, since time.Time) ([]entity.Order, error)
	// UsersSince returns users created at or after since.
	UsersSince(ctx context.Context, since time.Time) ([]entity.User, error)
	// Catalog returns every product, oldest first.
	Catalog(ctx context.Context) ([]entity.Product, error)
	Totals(ctx context.Context) (*StoreTotals, error)
}
