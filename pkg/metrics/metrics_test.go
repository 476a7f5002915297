package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Handler(t *testing.T) {
	r := NewRegistry()
	r.OrdersPlaced.Inc()
	r.AnalyticsQueries.WithLabelValues("stats", "week").Inc()

	assert.Equal(t, float64(1), testutil.ToFloat64(r.OrdersPlaced))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "stylehub_orders_placed_total 1")
	assert.Contains(t, string(body), `stylehub_analytics_queries_total{report="stats",time_range="week"} 1`)
}
