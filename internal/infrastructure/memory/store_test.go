package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stylehub/stylehub-api/internal/domain/entity"
	"github.com/stylehub/stylehub-api/internal/domain/enum"
	domainRepo "github.com/stylehub/stylehub-api/internal/domain/repository"
	"github.com/stylehub/stylehub-api/internal/infrastructure/seed"
	"github.com/stylehub/stylehub-api/pkg/pagination"
)

var testNow = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

func newDemoStore() *Store {
	return NewStore(seed.Demo(testNow, "hash"), WithClock(func() time.Time { return testNow }))
}

func TestStore_IsolatedFixtures(t *testing.T) {
	ctx := context.Background()
	a := NewProductRepository(newDemoStore())
	b := NewProductRepository(newDemoStore())

	shirtID := seed.ID("product:Classic White T-Shirt")
	require.NoError(t, a.Delete(ctx, shirtID))

	gone, err := a.GetByID(ctx, shirtID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	still, err := b.GetByID(ctx, shirtID)
	require.NoError(t, err)
	require.NotNil(t, still)
	assert.Equal(t, "Classic White T-Shirt", still.Name)
}

func TestProductRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(newDemoStore())
	id := seed.ID("product:Leather Watch")

	p, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, p.Category)
	assert.Equal(t, "Accessories", p.Category.Name)

	p.Inventory = 0
	again, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 25, again.Inventory)
}

func TestProductRepository_CreateAndSlugConflict(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(newDemoStore())

	p := &entity.Product{Name: "Wool Scarf", Slug: "wool-scarf", Price: decimal.NewFromInt(30)}
	require.NoError(t, repo.Create(ctx, p))
	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.True(t, p.CreatedAt.Equal(testNow))

	dup := &entity.Product{Name: "Wool Scarf", Slug: "wool-scarf"}
	assert.ErrorIs(t, repo.Create(ctx, dup), domainRepo.ErrDuplicate)

	missing := &entity.Product{ID: uuid.New(), Slug: "nope"}
	assert.ErrorIs(t, repo.Update(ctx, missing), domainRepo.ErrNotFound)
}

func TestProductRepository_List(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(newDemoStore())

	all, total, err := repo.List(ctx, &domainRepo.ProductFilterParams{})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	// Newest first: the dress was added last.
	assert.Equal(t, "Floral Summer Dress", all[0].Name)

	men, total, err := repo.List(ctx, &domainRepo.ProductFilterParams{Section: enum.SectionMen})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, men, 2)

	found, _, err := repo.List(ctx, &domainRepo.ProductFilterParams{Search: "JEANS"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Slim Fit Jeans", found[0].Name)

	page, total, err := repo.List(ctx, &domainRepo.ProductFilterParams{
		Pagination: &pagination.PaginationParams{Page: 2, PerPage: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, page, 2)

	footwear := seed.ID("category:Footwear")
	n, err := repo.CountByCategory(ctx, footwear)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestProductRepository_AtomicDecrementBatch(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(newDemoStore())
	shirt := seed.ID("product:Classic White T-Shirt")
	watch := seed.ID("product:Leather Watch")

	failed, err := repo.AtomicDecrementBatch(ctx, map[uuid.UUID]int{shirt: 10, watch: 26})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{watch}, failed)

	p, _ := repo.GetByID(ctx, shirt)
	assert.Equal(t, 100, p.Inventory, "nothing changes when one product lacks stock")

	failed, err = repo.AtomicDecrementBatch(ctx, map[uuid.UUID]int{shirt: 10, watch: 25})
	require.NoError(t, err)
	assert.Empty(t, failed)

	p, _ = repo.GetByID(ctx, shirt)
	assert.Equal(t, 90, p.Inventory)
	w, _ := repo.GetByID(ctx, watch)
	assert.Equal(t, 0, w.Inventory)
	assert.False(t, w.InStock())
}

func TestCategoryRepository_UpdateRefreshesProductLabels(t *testing.T) {
	ctx := context.Background()
	s := newDemoStore()
	categories := NewCategoryRepository(s)
	products := NewProductRepository(s)

	c, err := categories.GetBySlug(ctx, "t-shirts")
	require.NoError(t, err)
	require.NotNil(t, c)

	c.Name = "Tees"
	require.NoError(t, categories.Update(ctx, c))

	p, err := products.GetBySlug(ctx, "classic-white-t-shirt")
	require.NoError(t, err)
	assert.Equal(t, "Tees", p.CategoryName)

	women, err := categories.List(ctx, enum.SectionWomen)
	require.NoError(t, err)
	require.Len(t, women, 1)
	assert.Equal(t, "Dresses", women[0].Name)
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newDemoStore())

	u, err := repo.GetByEmail(ctx, "JANE@example.com")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "Jane Smith", u.Name)

	dup := &entity.User{Name: "Jane Again", Email: "Jane@Example.com"}
	assert.ErrorIs(t, repo.Create(ctx, dup), domainRepo.ErrDuplicate)

	role := enum.UserRoleCustomer
	list, total, err := repo.List(ctx, &domainRepo.UserFilterParams{Role: &role, Search: "smith"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, u.ID, list[0].ID)
}

func TestOrderRepository(t *testing.T) {
	ctx := context.Background()
	s := newDemoStore()
	repo := NewOrderRepository(s)
	customer := seed.ID("user:user@example.com")

	order := &entity.Order{
		OrderNumber: "SH-NEW",
		CustomerID:  customer,
		Total:       decimal.NewFromInt(10),
		Items:       []entity.OrderItem{{ProductID: uuid.New(), Quantity: 1, UnitPrice: decimal.NewFromInt(10)}},
	}
	require.NoError(t, repo.Create(ctx, order))
	assert.NotEqual(t, uuid.Nil, order.Items[0].ID)
	assert.Equal(t, order.ID, order.Items[0].OrderID)

	got, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Customer)
	assert.Equal(t, "Regular User", got.Customer.Name)

	mine, total, err := repo.List(ctx, &domainRepo.OrderFilterParams{CustomerID: &customer})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, "SH-NEW", mine[0].OrderNumber)

	pending := enum.OrderStatusPending
	_, total, err = repo.List(ctx, &domainRepo.OrderFilterParams{Status: &pending})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	assert.ErrorIs(t, repo.Create(ctx, &entity.Order{OrderNumber: "SH-NEW"}), domainRepo.ErrDuplicate)
}

func TestAnalyticsRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewAnalyticsRepository(newDemoStore())

	orders, err := repo.OrdersSince(ctx, testNow.Add(-36*time.Hour))
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "SH-ord2", orders[0].OrderNumber)

	catalog, err := repo.Catalog(ctx)
	require.NoError(t, err)
	require.Len(t, catalog, 5)
	assert.Equal(t, "Leather Watch", catalog[0].Name)

	users, err := repo.UsersSince(ctx, time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, users, 1)

	totals, err := repo.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), totals.Products)
	assert.Equal(t, int64(3), totals.Orders)
	assert.Equal(t, int64(2), totals.Customers)
	assert.True(t, totals.Revenue.IsPositive())
}

func TestIdempotencyRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewIdempotencyRepository(newDemoStore())
	user := uuid.New()

	key := &entity.IdempotencyKey{Key: "abc", UserID: user, ResponseCode: 201, ExpiresAt: testNow.Add(time.Hour)}
	require.NoError(t, repo.Create(ctx, key))
	assert.ErrorIs(t, repo.Create(ctx, &entity.IdempotencyKey{Key: "abc", UserID: user}), domainRepo.ErrDuplicate)

	other, err := repo.GetByKey(ctx, "abc", uuid.New())
	require.NoError(t, err)
	assert.Nil(t, other)

	reserved := &entity.IdempotencyKey{Key: "pending", UserID: user, ExpiresAt: testNow.Add(time.Hour)}
	require.NoError(t, repo.Create(ctx, reserved))
	require.NoError(t, repo.Complete(ctx, "pending", user, 201, `{"ok":true}`))
	done, err := repo.GetByKey(ctx, "pending", user)
	require.NoError(t, err)
	assert.False(t, done.Pending())
	assert.Equal(t, `{"ok":true}`, done.ResponseBody)

	require.NoError(t, repo.Release(ctx, "pending", user))
	kept, err := repo.GetByKey(ctx, "pending", user)
	require.NoError(t, err)
	assert.NotNil(t, kept, "completed keys survive Release")

	require.NoError(t, repo.Create(ctx, &entity.IdempotencyKey{Key: "abandoned", UserID: user, ExpiresAt: testNow.Add(time.Hour)}))
	require.NoError(t, repo.Release(ctx, "abandoned", user))
	abandoned, err := repo.GetByKey(ctx, "abandoned", user)
	require.NoError(t, err)
	assert.Nil(t, abandoned)
	assert.ErrorIs(t, repo.Complete(ctx, "abandoned", user, 201, ""), domainRepo.ErrNotFound)

	require.NoError(t, repo.DeleteExpired(ctx, testNow.Add(2*time.Hour)))
	gone, err := repo.GetByKey(ctx, "abc", user)
	require.NoError(t, err)
	assert.Nil(t, gone)
}
