package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry owns the service's collectors on a private prometheus registry.
type Registry struct {
	reg *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	OrdersPlaced   prometheus.Counter
	OrderRevenue   prometheus.Counter
	CheckoutFailed *prometheus.CounterVec

	AnalyticsQueries  *prometheus.CounterVec
	AnalyticsDuration *prometheus.HistogramVec
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stylehub_http_requests_total",
		Help: "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})
	httpDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stylehub_http_request_duration_seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	ordersPlaced := prometheus.NewCounter(prometheus.CounterOpts{Name: "stylehub_orders_placed_total"})
	orderRevenue := prometheus.NewCounter(prometheus.CounterOpts{Name: "stylehub_order_revenue_total"})
	checkoutFailed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stylehub_checkout_failed_total",
	}, []string{"reason"})

	analyticsQueries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stylehub_analytics_queries_total",
	}, []string{"report", "time_range"})
	analyticsDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stylehub_analytics_duration_seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"report"})

	r.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		httpRequests, httpDuration,
		ordersPlaced, orderRevenue, checkoutFailed,
		analyticsQueries, analyticsDuration,
	)

	return &Registry{
		reg:               r,
		HTTPRequests:      httpRequests,
		HTTPDuration:      httpDuration,
		OrdersPlaced:      ordersPlaced,
		OrderRevenue:      orderRevenue,
		CheckoutFailed:    checkoutFailed,
		AnalyticsQueries:  analyticsQueries,
		AnalyticsDuration: analyticsDuration,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
