package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stylehub/stylehub-api/internal/application/service"
	"github.com/stylehub/stylehub-api/internal/config"
	"github.com/stylehub/stylehub-api/internal/domain/analytics"
	"github.com/stylehub/stylehub-api/internal/domain/enum"
	"github.com/stylehub/stylehub-api/internal/infrastructure/memory"
	"github.com/stylehub/stylehub-api/internal/infrastructure/seed"
	"github.com/stylehub/stylehub-api/internal/presentation/http/handler"
	"github.com/stylehub/stylehub-api/pkg/metrics"
	"github.com/stylehub/stylehub-api/pkg/utils"
	"go.uber.org/zap"
)

type server struct {
	router *gin.Engine
	jwt    *utils.JWTManager
	admin  string
	user   string
	jane   string
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	now := time.Now()
	hash, err := utils.HashPassword("password123")
	require.NoError(t, err)
	data := seed.Demo(now, hash)
	admin := seed.Admin("Admin User", "admin@example.com", hash, now)
	data.Users = append(data.Users, admin)

	store := memory.NewStore(data)
	log := zap.NewNop()
	m := metrics.NewRegistry()
	jwt := utils.NewJWTManager("test-secret", time.Hour)

	userRepo := memory.NewUserRepository(store)
	productRepo := memory.NewProductRepository(store)
	categoryRepo := memory.NewCategoryRepository(store)
	orderRepo := memory.NewOrderRepository(store)
	analyticsRepo := memory.NewAnalyticsRepository(store)

	analyticsService := service.NewAnalyticsService(analyticsRepo, analytics.NewAggregator(), m, log)
	h := &Handlers{
		Auth:      handler.NewAuthHandler(service.NewAuthService(userRepo, jwt)),
		Product:   handler.NewProductHandler(service.NewProductService(productRepo, categoryRepo)),
		Category:  handler.NewCategoryHandler(service.NewCategoryService(categoryRepo, productRepo)),
		Order:     handler.NewOrderHandler(service.NewOrderService(orderRepo, productRepo, m, log)),
		Customer:  handler.NewCustomerHandler(service.NewCustomerService(userRepo)),
		Dashboard: handler.NewDashboardHandler(service.NewDashboardService(analyticsRepo, orderRepo, productRepo, analyticsService)),
		Analytics: handler.NewAnalyticsHandler(analyticsService, log),
	}

	cfg := &config.Config{
		App:       config.AppConfig{Name: "stylehub-api"},
		Storage:   config.StorageConfig{Driver: "memory"},
		RateLimit: config.RateLimitConfig{Requests: 1000, Duration: 1},
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	router := Setup(ctx, h, &Deps{
		JWTManager:      jwt,
		Cfg:             cfg,
		IdempotencyRepo: memory.NewIdempotencyRepository(store),
		Metrics:         m,
		Log:             log,
	})

	s := &server{router: router, jwt: jwt}
	s.admin = s.token(t, admin.ID, enum.UserRoleAdmin)
	s.user = s.token(t, seed.ID("user:user@example.com"), enum.UserRoleCustomer)
	s.jane = s.token(t, seed.ID("user:jane@example.com"), enum.UserRoleCustomer)
	return s
}

func (s *server) token(t *testing.T, id uuid.UUID, role enum.UserRole) string {
	t.Helper()
	tok, err := s.jwt.GenerateAccessToken(id, "", role.String())
	require.NoError(t, err)
	return tok
}

func (s *server) do(method, path, token string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Meta    struct {
		RequestID string `json:"request_id"`
	} `json:"meta"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func TestHealth(t *testing.T) {
	s := newServer(t)
	w := s.do(http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestAnalytics_RequiresAdmin(t *testing.T) {
	s := newServer(t)

	w := s.do(http.MethodGet, "/api/v1/analytics/stats", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/api/v1/analytics/stats", s.user, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, decodeEnvelope(t, w).Success)
}

func TestAnalytics_StatsReturnsBareKPIs(t *testing.T) {
	s := newServer(t)
	w := s.do(http.MethodGet, "/api/v1/analytics/stats", s.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var kpis []analytics.KPI
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &kpis))
	require.Len(t, kpis, 4)

	byKey := map[string]analytics.KPI{}
	for _, k := range kpis {
		byKey[k.Key] = k
	}
	orders := byKey[analytics.KeyTotalOrders]
	assert.True(t, orders.Value.Equal(decimal.NewFromInt(3)), orders.Value.String())
	assert.Equal(t, float64(100), orders.PercentChange)
	assert.Equal(t, analytics.TrendUp, orders.Trend)
}

func TestAnalytics_SalesTrendBucketCounts(t *testing.T) {
	s := newServer(t)

	for query, want := range map[string]int{
		"":                 7,
		"?timeRange=day":   24,
		"?timeRange=week":  7,
		"?timeRange=month": 30,
		"?timeRange=year":  12,
	} {
		w := s.do(http.MethodGet, "/api/v1/analytics/sales-trend"+query, s.admin, nil)
		require.Equal(t, http.StatusOK, w.Code, query)

		var points []analytics.TrendPoint
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &points))
		assert.Len(t, points, want, query)
	}
}

func TestAnalytics_InvalidTimeRange(t *testing.T) {
	s := newServer(t)
	w := s.do(http.MethodGet, "/api/v1/analytics/category-distribution?timeRange=decade", s.admin, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "invalid time range")
}

func TestAnalytics_TopProducts(t *testing.T) {
	s := newServer(t)

	w := s.do(http.MethodGet, "/api/v1/analytics/top-products?timeRange=month", s.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var top []analytics.ProductSales
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &top))
	require.Len(t, top, 5)

	seen := map[uuid.UUID]bool{}
	for _, p := range top {
		assert.False(t, seen[p.ProductID], "duplicate %s", p.ProductName)
		seen[p.ProductID] = true
	}
	// Four demo products sold two units each; nothing sold more.
	assert.Equal(t, 2, top[0].UnitsSold)

	w = s.do(http.MethodGet, "/api/v1/analytics/top-products?limit=2", s.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &top))
	assert.Len(t, top, 2)

	w = s.do(http.MethodGet, "/api/v1/analytics/top-products?limit=zero", s.admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProducts_PublicListing(t *testing.T) {
	s := newServer(t)
	w := s.do(http.MethodGet, "/api/v1/products?section=men&per_page=10", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	assert.True(t, env.Success)
	assert.NotEmpty(t, env.Meta.RequestID)

	var page struct {
		Items []struct {
			Name string `json:"name"`
		} `json:"items"`
		Pagination struct {
			Total int64 `json:"total"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, int64(2), page.Pagination.Total)

	w = s.do(http.MethodGet, "/api/v1/products?section=pets", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/v1/products/leather-watch", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/v1/products/no-such-product", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Not Found", decodeEnvelope(t, w).Error)
}

func TestProducts_AdminWrites(t *testing.T) {
	s := newServer(t)
	body := map[string]interface{}{
		"name":        "Silk Scarf",
		"price":       "39.50",
		"category_id": seed.ID("category:Accessories"),
		"inventory":   12,
		"details":     map[string]interface{}{"images": []map[string]interface{}{{"url": "/scarf.jpg", "is_primary": true}}},
	}

	w := s.do(http.MethodPost, "/api/v1/products", s.user, body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/api/v1/products", s.admin, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID      uuid.UUID    `json:"id"`
		Slug    string       `json:"slug"`
		Section enum.Section `json:"section"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &created))
	assert.Equal(t, "silk-scarf", created.Slug)
	assert.Equal(t, enum.SectionAccessories, created.Section)

	body["details"] = map[string]interface{}{"colour": "red"}
	w = s.do(http.MethodPost, "/api/v1/products", s.admin, body)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = s.do(http.MethodDelete, "/api/v1/products/"+created.ID.String(), s.admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodDelete, "/api/v1/products/not-a-uuid", s.admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCategories_DeleteInUse(t *testing.T) {
	s := newServer(t)

	w := s.do(http.MethodGet, "/api/v1/categories?section=women", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cats []struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &cats))
	require.Len(t, cats, 1)
	assert.Equal(t, "Dresses", cats[0].Name)

	w = s.do(http.MethodDelete, "/api/v1/categories/"+seed.ID("category:Dresses").String(), s.admin, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCheckout_QuoteAndIdempotentOrder(t *testing.T) {
	s := newServer(t)
	watch := seed.ID("product:Leather Watch")
	cart := map[string]interface{}{
		"items": []map[string]interface{}{{"product_id": watch, "quantity": 1}},
	}

	w := s.do(http.MethodPost, "/api/v1/cart/quote", "", cart)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var quote struct {
		Shipping decimal.Decimal `json:"shipping"`
		Total    decimal.Decimal `json:"total"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &quote))
	assert.True(t, quote.Shipping.IsZero())
	assert.Equal(t, "139.09", quote.Total.StringFixed(2))

	first := s.do(http.MethodPost, "/api/v1/orders", s.user, cart, "Idempotency-Key", "checkout-1")
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())

	replay := s.do(http.MethodPost, "/api/v1/orders", s.user, cart, "Idempotency-Key", "checkout-1")
	assert.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, "true", replay.Header().Get("X-Idempotency-Replayed"))
	assert.JSONEq(t, first.Body.String(), replay.Body.String())

	other := map[string]interface{}{
		"items": []map[string]interface{}{{"product_id": watch, "quantity": 2}},
	}
	w = s.do(http.MethodPost, "/api/v1/orders", s.user, other, "Idempotency-Key", "checkout-1")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// Same key from another customer is a separate request.
	w = s.do(http.MethodPost, "/api/v1/orders", s.jane, cart, "Idempotency-Key", "checkout-1")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Empty(t, w.Header().Get("X-Idempotency-Replayed"))

	w = s.do(http.MethodGet, "/api/v1/products/"+watch.String(), "", nil)
	var product struct {
		Inventory int `json:"inventory"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &product))
	assert.Equal(t, 23, product.Inventory)
}

func TestCheckout_Errors(t *testing.T) {
	s := newServer(t)
	dress := seed.ID("product:Floral Summer Dress")

	w := s.do(http.MethodPost, "/api/v1/orders", "", map[string]interface{}{"items": []interface{}{}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/v1/orders", s.user, map[string]interface{}{"items": []interface{}{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/v1/orders", s.user, map[string]interface{}{
		"items": []map[string]interface{}{{"product_id": dress, "quantity": 31}},
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, decodeEnvelope(t, w).Message, "Floral Summer Dress")

	w = s.do(http.MethodPost, "/api/v1/orders", s.user, map[string]interface{}{
		"items": []map[string]interface{}{{"product_id": uuid.New(), "quantity": 1}},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrders_Visibility(t *testing.T) {
	s := newServer(t)
	janesOrder := seed.ID("order:ord2").String()

	w := s.do(http.MethodGet, "/api/v1/orders/"+janesOrder, s.jane, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/v1/orders/"+janesOrder, s.user, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/api/v1/orders/"+janesOrder, s.admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/v1/orders", s.user, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodGet, "/api/v1/orders?status=pending", s.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Pagination struct {
			Total int64 `json:"total"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &page))
	assert.Equal(t, int64(1), page.Pagination.Total)

	w = s.do(http.MethodGet, "/api/v1/orders/mine", s.user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &page))
	assert.Equal(t, int64(2), page.Pagination.Total)
}

func TestAuth_RegisterLoginMe(t *testing.T) {
	s := newServer(t)

	w := s.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": "Sam Doe", "email": "Sam@Example.com", "password": "longenough",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": "Sam Again", "email": "sam@example.com", "password": "longenough",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": "", "email": "nope", "password": "short",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "sam@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "sam@example.com", "password": "longenough",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var login struct {
		AccessToken string `json:"access_token"`
		User        struct {
			Role string `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &login))
	assert.Equal(t, "customer", login.User.Role)

	w = s.do(http.MethodGet, "/api/v1/auth/me", login.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "sam@example.com")

	w = s.do(http.MethodGet, "/api/v1/auth/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCustomersAndDashboard(t *testing.T) {
	s := newServer(t)

	w := s.do(http.MethodGet, "/api/v1/customers?search=jane", s.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "jane@example.com")
	assert.NotContains(t, w.Body.String(), "admin@example.com")

	w = s.do(http.MethodGet, "/api/v1/dashboard", s.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats struct {
		TotalProducts  int64 `json:"total_products"`
		TotalOrders    int64 `json:"total_orders"`
		TotalCustomers int64 `json:"total_customers"`
		RecentOrders   []struct {
			OrderNumber string `json:"order_number"`
		} `json:"recent_orders"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &stats))
	assert.Equal(t, int64(5), stats.TotalProducts)
	assert.Equal(t, int64(3), stats.TotalOrders)
	assert.Equal(t, int64(2), stats.TotalCustomers)
	assert.Len(t, stats.RecentOrders, 3)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newServer(t)
	s.do(http.MethodGet, "/api/v1/products", "", nil)

	w := s.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `stylehub_http_requests_total{method="GET",route="/api/v1/products",status="200"} 1`)
}
