package routes

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stylehub/stylehub-api/internal/config"
	"github.com/stylehub/stylehub-api/internal/domain/enum"
	domainRepo "github.com/stylehub/stylehub-api/internal/domain/repository"
	"github.com/stylehub/stylehub-api/internal/presentation/http/handler"
	"github.com/stylehub/stylehub-api/internal/presentation/http/middleware"
	"github.com/stylehub/stylehub-api/pkg/metrics"
	"github.com/stylehub/stylehub-api/pkg/utils"
	"go.uber.org/zap"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth      *handler.AuthHandler
	Product   *handler.ProductHandler
	Category  *handler.CategoryHandler
	Order     *handler.OrderHandler
	Customer  *handler.CustomerHandler
	Dashboard *handler.DashboardHandler
	Analytics *handler.AnalyticsHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	Metrics         *metrics.Registry
	Log             *zap.Logger
}

// Setup creates the Gin router and registers all routes. The rate limiter's
// cleanup loop stops when ctx is cancelled.
func Setup(ctx context.Context, h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	router.Use(middleware.LoggerMiddleware(deps.Log))
	router.Use(middleware.RecoveryMiddleware(deps.Log))
	router.Use(middleware.MetricsMiddleware(deps.Metrics))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
			"storage": deps.Cfg.Storage.Driver,
		})
	})
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	rateLimiter := middleware.NewClientRateLimiter(ctx, rateLimiterConfig(&deps.Cfg.RateLimit))
	requireAuth := middleware.AuthMiddleware(deps.JWTManager)
	requireAdmin := middleware.RequireRole(enum.UserRoleAdmin.String())

	v1 := router.Group("/api/v1")
	v1.Use(rateLimiter.Middleware())
	{
		registerAuthRoutes(v1, h, requireAuth)
		registerCatalogRoutes(v1, h, requireAuth, requireAdmin)
		registerOrderRoutes(v1, h, deps, requireAuth, requireAdmin)

		admin := v1.Group("", requireAuth, requireAdmin)
		registerAdminRoutes(admin, h)
	}

	return router
}

func rateLimiterConfig(cfg *config.RateLimitConfig) middleware.RateLimiterConfig {
	rl := middleware.DefaultRateLimiterConfig()
	if cfg.Requests > 0 && cfg.Duration > 0 {
		rl.RequestsPerSecond = float64(cfg.Requests) / float64(cfg.Duration)
		rl.BurstSize = cfg.Requests
	}
	rl.CleanupInterval = 5 * time.Minute
	return rl
}

func registerAuthRoutes(v1 *gin.RouterGroup, h *Handlers, requireAuth gin.HandlerFunc) {
	auth := v1.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/register", h.Auth.Register)
		auth.GET("/me", requireAuth, h.Auth.Me)
	}
}

// Catalog reads are public; writes are admin only.
func registerCatalogRoutes(v1 *gin.RouterGroup, h *Handlers, requireAuth, requireAdmin gin.HandlerFunc) {
	products := v1.Group("/products")
	{
		products.GET("", h.Product.List)
		products.GET("/:id", h.Product.Get)
		products.POST("", requireAuth, requireAdmin, h.Product.Create)
		products.PUT("/:id", requireAuth, requireAdmin, h.Product.Update)
		products.DELETE("/:id", requireAuth, requireAdmin, h.Product.Delete)
	}

	categories := v1.Group("/categories")
	{
		categories.GET("", h.Category.List)
		categories.GET("/:id", h.Category.Get)
		categories.POST("", requireAuth, requireAdmin, h.Category.Create)
		categories.PUT("/:id", requireAuth, requireAdmin, h.Category.Update)
		categories.DELETE("/:id", requireAuth, requireAdmin, h.Category.Delete)
	}
}

func registerOrderRoutes(v1 *gin.RouterGroup, h *Handlers, deps *Deps, requireAuth, requireAdmin gin.HandlerFunc) {
	v1.POST("/cart/quote", h.Order.Quote)

	orders := v1.Group("/orders", requireAuth)
	{
		orders.POST("", middleware.Idempotency(middleware.IdempotencyConfig{
			Repo: deps.IdempotencyRepo,
			Log:  deps.Log,
		}), h.Order.Create)
		orders.GET("/mine", h.Order.ListMine)
		orders.GET("/:id", h.Order.Get)
		orders.GET("", requireAdmin, h.Order.List)
	}
}

func registerAdminRoutes(admin *gin.RouterGroup, h *Handlers) {
	admin.GET("/dashboard", h.Dashboard.GetStats)

	customers := admin.Group("/customers")
	{
		customers.GET("", h.Customer.List)
		customers.GET("/:id", h.Customer.Get)
		customers.DELETE("/:id", h.Customer.Delete)
	}

	analytics := admin.Group("/analytics")
	{
		analytics.GET("/stats", h.Analytics.Stats)
		analytics.GET("/sales-trend", h.Analytics.SalesTrend)
		analytics.GET("/category-distribution", h.Analytics.CategoryDistribution)
		analytics.GET("/top-products", h.Analytics.TopProducts)
	}
}
