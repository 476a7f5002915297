//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stylehub/stylehub-api/internal/config"
	"github.com/stylehub/stylehub-api/internal/domain/entity"
	"github.com/stylehub/stylehub-api/internal/domain/enum"
	domainRepo "github.com/stylehub/stylehub-api/internal/domain/repository"
	"github.com/stylehub/stylehub-api/internal/infrastructure/database"
	"github.com/stylehub/stylehub-api/internal/infrastructure/seed"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var seedNow = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
			"POSTGRES_DB":       "stylehub_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := &config.DatabaseConfig{
		Host:     host,
		Port:     port.Port(),
		Name:     "stylehub_test",
		User:     "testuser",
		Password: "testpass",
		SSLMode:  "disable",
		Timezone: "UTC",
	}
	log := zap.NewNop()

	db, err := database.NewPostgresDB(cfg, log, false)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db, log))
	require.NoError(t, database.SeedDefaultData(ctx, db, seed.Demo(seedNow, "hash"), log))
	return db
}

func TestPostgresRepositories(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	products := NewProductRepository(db)
	categories := NewCategoryRepository(db)
	orders := NewOrderRepository(db)
	users := NewUserRepository(db)
	analytics := NewAnalyticsRepository(db)

	t.Run("seed is idempotent", func(t *testing.T) {
		require.NoError(t, database.SeedDefaultData(ctx, db, seed.Demo(seedNow, "hash"), zap.NewNop()))
		_, total, err := products.List(ctx, &domainRepo.ProductFilterParams{})
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
	})

	t.Run("product details round trip through jsonb", func(t *testing.T) {
		p, err := products.GetBySlug(ctx, "classic-white-t-shirt")
		require.NoError(t, err)
		require.NotNil(t, p)
		require.NotNil(t, p.Category)
		assert.Equal(t, "T-Shirts", p.Category.Name)
		require.Len(t, p.Details.Images, 1)
		assert.True(t, p.Details.Images[0].IsPrimary)
	})

	t.Run("slug conflicts map to ErrDuplicate", func(t *testing.T) {
		err := products.Create(ctx, &entity.Product{Name: "Copy", Slug: "slim-fit-jeans"})
		assert.ErrorIs(t, err, domainRepo.ErrDuplicate)

		err = products.Update(ctx, &entity.Product{ID: uuid.New(), Name: "Ghost", Slug: "ghost"})
		assert.ErrorIs(t, err, domainRepo.ErrNotFound)
	})

	t.Run("batch decrement is all or nothing", func(t *testing.T) {
		shirt := seed.ID("product:Classic White T-Shirt")
		watch := seed.ID("product:Leather Watch")

		failed, err := products.AtomicDecrementBatch(ctx, map[uuid.UUID]int{shirt: 1, watch: 1000})
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{watch}, failed)

		p, err := products.GetByID(ctx, shirt)
		require.NoError(t, err)
		assert.Equal(t, 100, p.Inventory)
	})

	t.Run("category rename updates product labels", func(t *testing.T) {
		c, err := categories.GetBySlug(ctx, "jeans")
		require.NoError(t, err)
		c.Name = "Denim"
		require.NoError(t, categories.Update(ctx, c))

		p, err := products.GetBySlug(ctx, "slim-fit-jeans")
		require.NoError(t, err)
		assert.Equal(t, "Denim", p.CategoryName)
	})

	t.Run("orders persist with items", func(t *testing.T) {
		customer := seed.ID("user:jane@example.com")
		status := enum.OrderStatusPending
		list, total, err := orders.List(ctx, &domainRepo.OrderFilterParams{CustomerID: &customer, Status: &status})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, list[0].Items, 2)
		require.NotNil(t, list[0].Customer)
		assert.Equal(t, "Jane Smith", list[0].Customer.Name)
	})

	t.Run("idempotency reservation", func(t *testing.T) {
		keys := NewIdempotencyRepository(db)
		user := seed.ID("user:jane@example.com")
		reserve := func() error {
			return keys.Create(ctx, &entity.IdempotencyKey{
				Key: "checkout-1", UserID: user, Endpoint: "POST /api/v1/orders", ExpiresAt: seedNow.Add(time.Hour),
			})
		}

		require.NoError(t, reserve())
		assert.ErrorIs(t, reserve(), domainRepo.ErrDuplicate)

		require.NoError(t, keys.Release(ctx, "checkout-1", user))
		require.NoError(t, reserve())
		require.NoError(t, keys.Complete(ctx, "checkout-1", user, 201, `{"ok":true}`))
		require.NoError(t, keys.Release(ctx, "checkout-1", user))

		stored, err := keys.GetByKey(ctx, "checkout-1", user)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, 201, stored.ResponseCode)
		assert.ErrorIs(t, keys.Complete(ctx, "missing", user, 201, ""), domainRepo.ErrNotFound)
	})

	t.Run("emails are unique regardless of case", func(t *testing.T) {
		err := users.Create(ctx, &entity.User{Name: "Dup", Email: "USER@example.com", Password: "x"})
		assert.ErrorIs(t, err, domainRepo.ErrDuplicate)

		u, err := users.GetByEmail(ctx, "User@Example.com")
		require.NoError(t, err)
		require.NotNil(t, u)
	})

	t.Run("analytics snapshots", func(t *testing.T) {
		recent, err := analytics.OrdersSince(ctx, seedNow.AddDate(0, 0, -7))
		require.NoError(t, err)
		assert.Len(t, recent, 3)
		for _, o := range recent {
			assert.NotEmpty(t, o.Items)
		}

		catalog, err := analytics.Catalog(ctx)
		require.NoError(t, err)
		require.Len(t, catalog, 5)
		assert.Equal(t, "Leather Watch", catalog[0].Name)
		for _, p := range catalog {
			require.NotNil(t, p.Category, p.Name)
			p.CategoryName = ""
			assert.NotEmpty(t, p.CategoryLabel(), p.Name)
		}

		totals, err := analytics.Totals(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), totals.Orders)
		assert.Equal(t, int64(2), totals.Customers)
		assert.True(t, totals.Revenue.IsPositive())
	})
}
