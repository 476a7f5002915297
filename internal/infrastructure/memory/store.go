package memory

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stylehub/stylehub-api/internal/domain/entity"
	"github.com/stylehub/stylehub-api/internal/infrastructure/seed"
)

// Store is an in-process dataset shared by the memory repositories. It is
// built once from injected seed data; reads hand out copies so callers never
// alias stored records.
type Store struct {
	mu          sync.RWMutex
	categories  map[uuid.UUID]entity.Category
	products    map[uuid.UUID]entity.Product
	users       map[uuid.UUID]entity.User
	orders      map[uuid.UUID]entity.Order
	idempotency map[string]entity.IdempotencyKey
	now         func() time.Time
}

type Option func(*Store)

// WithClock sets the clock used to stamp records created without timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(data seed.Data, opts ...Option) *Store {
	s := &Store{
		categories:  make(map[uuid.UUID]entity.Category, len(data.Categories)),
		products:    make(map[uuid.UUID]entity.Product, len(data.Products)),
		users:       make(map[uuid.UUID]entity.User, len(data.Users)),
		orders:      make(map[uuid.UUID]entity.Order, len(data.Orders)),
		idempotency: make(map[string]entity.IdempotencyKey),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, c := range data.Categories {
		s.fill(&c.ID, &c.CreatedAt, &c.UpdatedAt)
		s.categories[c.ID] = c
	}
	for _, p := range data.Products {
		s.fill(&p.ID, &p.CreatedAt, &p.UpdatedAt)
		p.Category = nil
		s.products[p.ID] = p
	}
	for _, u := range data.Users {
		s.fill(&u.ID, &u.CreatedAt, &u.UpdatedAt)
		u.Email = strings.ToLower(u.Email)
		s.users[u.ID] = u
	}
	for _, o := range data.Orders {
		o = s.prepareOrder(o)
		s.orders[o.ID] = o
	}
	return s
}

// fill assigns a fresh ID and the current time to zero-valued fields.
func (s *Store) fill(id *uuid.UUID, created, updated *time.Time) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
	now := s.now()
	if created.IsZero() {
		*created = now
	}
	if updated != nil && updated.IsZero() {
		*updated = *created
	}
}

// prepareOrder stamps the order and its items and drops loaded relations.
func (s *Store) prepareOrder(o entity.Order) entity.Order {
	s.fill(&o.ID, &o.CreatedAt, nil)
	items := make([]entity.OrderItem, len(o.Items))
	for i, item := range o.Items {
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		item.OrderID = o.ID
		items[i] = item
	}
	o.Items = items
	o.Customer = nil
	return o
}

// withCategory returns p with its category relation attached. Callers must
// hold at least a read lock.
func (s *Store) withCategory(p entity.Product) entity.Product {
	p.Category = nil
	if p.CategoryID != nil {
		if c, ok := s.categories[*p.CategoryID]; ok {
			p.Category = &c
		}
	}
	return p
}

func copyOrder(o entity.Order) entity.Order {
	o.Items = append([]entity.OrderItem(nil), o.Items...)
	return o
}

func idempotencyKey(userID uuid.UUID, key string) string {
	return userID.String() + "/" + key
}
