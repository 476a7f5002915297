package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stylehub/stylehub-api/internal/application/service"
	"github.com/stylehub/stylehub-api/internal/domain/analytics"
	"github.com/stylehub/stylehub-api/internal/presentation/http/dto/response"
	"go.uber.org/zap"
)

// AnalyticsHandler serves the reporting endpoints. Unlike the rest of the
// API these write bare JSON arrays, and errors as {"error": "..."}.
type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
	log              *zap.Logger
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analyticsService *service.AnalyticsService, log *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService, log: log.Named("analytics")}
}

// timeRange reads the timeRange query parameter, writing a 400 when it is
// not one of day, week, month or year.
func (h *AnalyticsHandler) timeRange(c *gin.Context) (analytics.TimeRange, bool) {
	r, err := analytics.ParseTimeRange(c.Query("timeRange"))
	if err != nil {
		response.BareError(c, http.StatusBadRequest, err.Error())
		return "", false
	}
	return r, true
}

func (h *AnalyticsHandler) fail(c *gin.Context, message string, err error) {
	h.log.Error(message,
		zap.String("request_id", c.GetString(response.RequestIDKey)),
		zap.Error(err))
	response.BareError(c, http.StatusInternalServerError, message)
}

// Stats handles GET /analytics/stats
func (h *AnalyticsHandler) Stats(c *gin.Context) {
	r, ok := h.timeRange(c)
	if !ok {
		return
	}
	kpis, err := h.analyticsService.Stats(c.Request.Context(), r)
	if err != nil {
		h.fail(c, "Failed to fetch stats", err)
		return
	}
	response.Bare(c, kpis)
}

// SalesTrend handles GET /analytics/sales-trend
func (h *AnalyticsHandler) SalesTrend(c *gin.Context) {
	r, ok := h.timeRange(c)
	if !ok {
		return
	}
	points, err := h.analyticsService.SalesTrend(c.Request.Context(), r)
	if err != nil {
		h.fail(c, "Failed to fetch sales trend", err)
		return
	}
	response.Bare(c, points)
}

// CategoryDistribution handles GET /analytics/category-distribution
func (h *AnalyticsHandler) CategoryDistribution(c *gin.Context) {
	r, ok := h.timeRange(c)
	if !ok {
		return
	}
	dist, err := h.analyticsService.CategoryDistribution(c.Request.Context(), r)
	if err != nil {
		h.fail(c, "Failed to fetch category distribution", err)
		return
	}
	response.Bare(c, dist)
}

// TopProducts handles GET /analytics/top-products. An optional limit query
// parameter overrides the default of five.
func (h *AnalyticsHandler) TopProducts(c *gin.Context) {
	r, ok := h.timeRange(c)
	if !ok {
		return
	}

	limit := analytics.DefaultTopProductsLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.BareError(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	top, err := h.analyticsService.TopProducts(c.Request.Context(), r, limit)
	if err != nil {
		h.fail(c, "Failed to fetch top products", err)
		return
	}
	response.Bare(c, top)
}
