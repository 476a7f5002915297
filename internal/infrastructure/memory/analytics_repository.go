package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stylehub/stylehub-api/internal/domain/entity"
	"github.com/stylehub/stylehub-api/internal/domain/enum"
	domainRepo "github.com/stylehub/stylehub-api/internal/domain/repository"
)

type analyticsRepository struct {
	s *Store
}

func NewAnalyticsRepository(s *Store) domainRepo.AnalyticsRepository {
	return &analyticsRepository{s: s}
}

func (r *analyticsRepository) OrdersSince(ctx context.Context, since time.Time) ([]entity.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	orders := make([]entity.Order, 0, len(r.s.orders))
	for _, o := range r.s.orders {
		if !o.CreatedAt.Before(since) {
			orders = append(orders, copyOrder(o))
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.Before(orders[j].CreatedAt) })
	return orders, nil
}

func (r *analyticsRepository) UsersSince(ctx context.Context, since time.Time) ([]entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	users := make([]entity.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		if !u.CreatedAt.Before(since) {
			users = append(users, u)
		}
	}
	return users, nil
}

func (r *analyticsRepository) Catalog(ctx context.Context) ([]entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	products := make([]entity.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool {
		if !products[i].CreatedAt.Equal(products[j].CreatedAt) {
			return products[i].CreatedAt.Before(products[j].CreatedAt)
		}
		return products[i].Name < products[j].Name
	})
	return products, nil
}

func (r *analyticsRepository) Totals(ctx context.Context) (*domainRepo.StoreTotals, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	totals := &domainRepo.StoreTotals{
		Products: int64(len(r.s.products)),
		Orders:   int64(len(r.s.orders)),
		Revenue:  decimal.Zero,
	}
	for _, o := range r.s.orders {
		totals.Revenue = totals.Revenue.Add(o.Total)
	}
	for _, u := range r.s.users {
		if u.Role == enum.UserRoleCustomer {
			totals.Customers++
		}
	}
	return totals, nil
}
