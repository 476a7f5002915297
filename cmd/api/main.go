package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stylehub/stylehub-api/internal/application/service"
	"github.com/stylehub/stylehub-api/internal/config"
	"github.com/stylehub/stylehub-api/internal/domain/analytics"
	domainRepo "github.com/stylehub/stylehub-api/internal/domain/repository"
	"github.com/stylehub/stylehub-api/internal/infrastructure/database"
	"github.com/stylehub/stylehub-api/internal/infrastructure/memory"
	"github.com/stylehub/stylehub-api/internal/infrastructure/repository"
	"github.com/stylehub/stylehub-api/internal/infrastructure/seed"
	"github.com/stylehub/stylehub-api/internal/presentation/http/handler"
	"github.com/stylehub/stylehub-api/internal/presentation/http/routes"
	"github.com/stylehub/stylehub-api/pkg/logger"
	"github.com/stylehub/stylehub-api/pkg/metrics"
	"github.com/stylehub/stylehub-api/pkg/utils"
	"go.uber.org/zap"
)

// demoPassword is the password of the seeded demo customers.
const demoPassword = "password123"

const shutdownTimeout = 10 * time.Second

type repositories struct {
	users       domainRepo.UserRepository
	products    domainRepo.ProductRepository
	categories  domainRepo.CategoryRepository
	orders      domainRepo.OrderRepository
	idempotency domainRepo.IdempotencyRepository
	analytics   domainRepo.AnalyticsRepository
}

func main() {
	cfg := config.Load()

	zlog, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if err := run(cfg, zlog); err != nil {
		zlog.Error("server stopped", zap.Error(err))
		_ = zlog.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, zlog *zap.Logger) error {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	data, err := seedData(cfg)
	if err != nil {
		return err
	}

	repos, err := openStorage(ctx, cfg, data, zlog)
	if err != nil {
		return err
	}

	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours)
	registry := metrics.NewRegistry()
	aggregator := analytics.NewAggregator(analytics.WithLocation(cfg.App.Location()))

	analyticsService := service.NewAnalyticsService(repos.analytics, aggregator, registry, zlog)
	authService := service.NewAuthService(repos.users, jwtManager)
	productService := service.NewProductService(repos.products, repos.categories)
	categoryService := service.NewCategoryService(repos.categories, repos.products)
	orderService := service.NewOrderService(repos.orders, repos.products, registry, zlog)
	customerService := service.NewCustomerService(repos.users)
	dashboardService := service.NewDashboardService(repos.analytics, repos.orders, repos.products, analyticsService)

	handlers := &routes.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Product:   handler.NewProductHandler(productService),
		Category:  handler.NewCategoryHandler(categoryService),
		Order:     handler.NewOrderHandler(orderService),
		Customer:  handler.NewCustomerHandler(customerService),
		Dashboard: handler.NewDashboardHandler(dashboardService),
		Analytics: handler.NewAnalyticsHandler(analyticsService, zlog),
	}

	router := routes.Setup(ctx, handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: repos.idempotency,
		Metrics:         registry,
		Log:             zlog,
	})

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("starting server",
			zap.String("service", cfg.App.Name),
			zap.String("env", cfg.App.Env),
			zap.String("port", port),
			zap.String("storage", cfg.Storage.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zlog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// seedData builds the initial dataset: the demo storefront when enabled and
// the configured administrator when ADMIN_PASSWORD is set.
func seedData(cfg *config.Config) (seed.Data, error) {
	var data seed.Data
	now := time.Now()

	if cfg.Storage.SeedDemo {
		hash, err := utils.HashPassword(demoPassword)
		if err != nil {
			return data, fmt.Errorf("hash demo password: %w", err)
		}
		data = data.Merge(seed.Demo(now, hash))
	}

	if cfg.Admin.Password != "" {
		hash, err := utils.HashPassword(cfg.Admin.Password)
		if err != nil {
			return data, fmt.Errorf("hash admin password: %w", err)
		}
		data.Users = append(data.Users, seed.Admin(cfg.Admin.Name, cfg.Admin.Email, hash, now))
	}
	return data, nil
}

func openStorage(ctx context.Context, cfg *config.Config, data seed.Data, zlog *zap.Logger) (*repositories, error) {
	switch cfg.Storage.Driver {
	case "memory", "":
		store := memory.NewStore(data)
		zlog.Info("using in-memory storage",
			zap.Int("products", len(data.Products)),
			zap.Int("orders", len(data.Orders)))
		return &repositories{
			users:       memory.NewUserRepository(store),
			products:    memory.NewProductRepository(store),
			categories:  memory.NewCategoryRepository(store),
			orders:      memory.NewOrderRepository(store),
			idempotency: memory.NewIdempotencyRepository(store),
			analytics:   memory.NewAnalyticsRepository(store),
		}, nil

	case "postgres":
		db, err := database.NewPostgresDB(&cfg.Database, zlog, cfg.App.Debug)
		if err != nil {
			return nil, err
		}
		if err := database.AutoMigrate(db, zlog); err != nil {
			return nil, err
		}
		if err := database.SeedDefaultData(ctx, db, data, zlog); err != nil {
			zlog.Warn("failed to seed default data", zap.Error(err))
		}
		return &repositories{
			users:       repository.NewUserRepository(db),
			products:    repository.NewProductRepository(db),
			categories:  repository.NewCategoryRepository(db),
			orders:      repository.NewOrderRepository(db),
			idempotency: repository.NewIdempotencyRepository(db),
			analytics:   repository.NewAnalyticsRepository(db),
		}, nil
	}
	return nil, fmt.Errorf("unknown STORAGE_DRIVER %q (want memory or postgres)", cfg.Storage.Driver)
}
