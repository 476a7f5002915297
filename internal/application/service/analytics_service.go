package service

import (
	"context"
	"fmt"
	"time"

	"github.com/stylehub/stylehub-api/internal/domain/analytics"
	"github.com/stylehub/stylehub-api/internal/domain/entity"
	"github.com/stylehub/stylehub-api/internal/domain/repository"
	"github.com/stylehub/stylehub-api/pkg/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// AnalyticsService loads snapshots from storage and runs the aggregator over
// them. Each call reads fresh data; nothing is cached between requests.
type AnalyticsService struct {
	repo       repository.AnalyticsRepository
	aggregator *analytics.Aggregator
	metrics    *metrics.Registry
	log        *zap.Logger
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(
	repo repository.AnalyticsRepository,
	aggregator *analytics.Aggregator,
	m *metrics.Registry,
	log *zap.Logger,
) *AnalyticsService {
	return &AnalyticsService{
		repo:       repo,
		aggregator: aggregator,
		metrics:    m,
		log:        log.Named("analytics"),
	}
}

type snapshot struct {
	orders   []entity.Order
	users    []entity.User
	products []entity.Product
}

type snapshotParts struct {
	users    bool
	products bool
}

// load reads the orders created since the earliest instant r needs, plus the
// requested extra collections, concurrently.
func (s *AnalyticsService) load(ctx context.Context, r analytics.TimeRange, parts snapshotParts) (*snapshot, error) {
	since := s.aggregator.Since(r)
	snap := &snapshot{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		orders, err := s.repo.OrdersSince(gctx, since)
		if err != nil {
			return fmt.Errorf("load orders: %w", err)
		}
		snap.orders = orders
		return nil
	})
	if parts.users {
		g.Go(func() error {
			users, err := s.repo.UsersSince(gctx, since)
			if err != nil {
				return fmt.Errorf("load users: %w", err)
			}
			snap.users = users
			return nil
		})
	}
	if parts.products {
		g.Go(func() error {
			products, err := s.repo.Catalog(gctx)
			if err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}
			snap.products = products
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.log.Error("snapshot load failed", zap.String("time_range", string(r)), zap.Error(err))
		return nil, err
	}
	return snap, nil
}

func (s *AnalyticsService) observe(report string, r analytics.TimeRange, start time.Time) {
	s.metrics.AnalyticsQueries.WithLabelValues(report, string(r)).Inc()
	s.metrics.AnalyticsDuration.WithLabelValues(report).Observe(time.Since(start).Seconds())
}

// Stats returns the four headline KPIs for r.
func (s *AnalyticsService) Stats(ctx context.Context, r analytics.TimeRange) ([]analytics.KPI, error) {
	defer s.observe("stats", r, time.Now())

	snap, err := s.load(ctx, r, snapshotParts{users: true})
	if err != nil {
		return nil, err
	}
	return s.aggregator.Stats(snap.orders, snap.users, r), nil
}

func (s *AnalyticsService) SalesTrend(ctx context.Context, r analytics.TimeRange) ([]analytics.TrendPoint, error) {
	defer s.observe("sales_trend", r, time.Now())

	snap, err := s.load(ctx, r, snapshotParts{})
	if err != nil {
		return nil, err
	}
	return s.aggregator.SalesTrend(snap.orders, r), nil
}

func (s *AnalyticsService) CategoryDistribution(ctx context.Context, r analytics.TimeRange) ([]analytics.CategorySales, error) {
	defer s.observe("category_distribution", r, time.Now())

	snap, err := s.load(ctx, r, snapshotParts{products: true})
	if err != nil {
		return nil, err
	}
	return s.aggregator.CategoryDistribution(snap.orders, snap.products, r), nil
}

// TopProducts ranks products by units sold. A limit below one selects the
// default of five.
func (s *AnalyticsService) TopProducts(ctx context.Context, r analytics.TimeRange, limit int) ([]analytics.ProductSales, error) {
	defer s.observe("top_products", r, time.Now())

	snap, err := s.load(ctx, r, snapshotParts{products: true})
	if err != nil {
		return nil, err
	}
	return s.aggregator.TopProducts(snap.orders, snap.products, r, limit), nil
}
