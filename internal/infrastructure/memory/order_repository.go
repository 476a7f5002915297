package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/stylehub/stylehub-api/internal/domain/entity"
	domainRepo "github.com/stylehub/stylehub-api/internal/domain/repository"
	"github.com/stylehub/stylehub-api/pkg/pagination"
)

type orderRepository struct {
	s *Store
}

func NewOrderRepository(s *Store) domainRepo.OrderRepository {
	return &orderRepository{s: s}
}

func (r *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, o := range r.s.orders {
		if o.OrderNumber == order.OrderNumber {
			return domainRepo.ErrDuplicate
		}
	}
	stored := r.s.prepareOrder(*order)
	r.s.orders[stored.ID] = stored

	order.ID = stored.ID
	order.CreatedAt = stored.CreatedAt
	order.Items = copyOrder(stored).Items
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	o, ok := r.s.orders[id]
	if !ok {
		return nil, nil
	}
	o = r.withCustomer(copyOrder(o))
	return &o, nil
}

func (r *orderRepository) List(ctx context.Context, params *domainRepo.OrderFilterParams) ([]entity.Order, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var matched []entity.Order
	for _, o := range r.s.orders {
		if params.Status != nil && o.Status != *params.Status {
			continue
		}
		if params.CustomerID != nil && o.CustomerID != *params.CustomerID {
			continue
		}
		if params.StartDate != nil && o.CreatedAt.Before(*params.StartDate) {
			continue
		}
		if params.EndDate != nil && !o.CreatedAt.Before(*params.EndDate) {
			continue
		}
		matched = append(matched, o)
	}
	sortOrdersNewestFirst(matched)

	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()
	page, total := pagination.Slice(matched, params.Pagination)

	out := make([]entity.Order, len(page))
	for i, o := range page {
		out[i] = r.withCustomer(copyOrder(o))
	}
	return out, total, nil
}

// withCustomer attaches the owning user. Callers must hold the lock.
func (r *orderRepository) withCustomer(o entity.Order) entity.Order {
	if u, ok := r.s.users[o.CustomerID]; ok {
		o.Customer = &u
	}
	return o
}

func sortOrdersNewestFirst(orders []entity.Order) {
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		return orders[i].OrderNumber < orders[j].OrderNumber
	})
}
