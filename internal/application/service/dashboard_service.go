package service

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stylehub/stylehub-api/internal/domain/analytics"
	"github.com/stylehub/stylehub-api/internal/domain/entity"
	"github.com/stylehub/stylehub-api/internal/domain/repository"
	"github.com/stylehub/stylehub-api/pkg/pagination"
	"golang.org/x/sync/errgroup"
)

const dashboardRecentLimit = 5

// DashboardService provides dashboard statistics
type DashboardService struct {
	analyticsRepo repository.AnalyticsRepository
	orderRepo     repository.OrderRepository
	productRepo   repository.ProductRepository
	analytics     *AnalyticsService
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	analyticsRepo repository.AnalyticsRepository,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	analyticsService *AnalyticsService,
) *DashboardService {
	return &DashboardService{
		analyticsRepo: analyticsRepo,
		orderRepo:     orderRepo,
		productRepo:   productRepo,
		analytics:     analyticsService,
	}
}

// DashboardStats represents dashboard statistics. The growth figures compare
// the current month with the one before it.
type DashboardStats struct {
	TotalProducts   int64            `json:"total_products"`
	TotalOrders     int64            `json:"total_orders"`
	TotalCustomers  int64            `json:"total_customers"`
	TotalRevenue    decimal.Decimal  `json:"total_revenue"`
	RevenueGrowth   float64          `json:"revenue_growth"`
	OrdersGrowth    float64          `json:"orders_growth"`
	CustomersGrowth float64          `json:"customers_growth"`
	RecentOrders    []entity.Order   `json:"recent_orders"`
	RecentProducts  []entity.Product `json:"recent_products"`
}

// GetDashboardStats returns dashboard statistics
func (s *DashboardService) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		totals, err := s.analyticsRepo.Totals(gctx)
		if err != nil {
			return err
		}
		stats.TotalProducts = totals.Products
		stats.TotalOrders = totals.Orders
		stats.TotalCustomers = totals.Customers
		stats.TotalRevenue = totals.Revenue
		return nil
	})
	g.Go(func() error {
		kpis, err := s.analytics.Stats(gctx, analytics.RangeMonth)
		if err != nil {
			return err
		}
		for _, k := range kpis {
			switch k.Key {
			case analytics.KeyTotalRevenue:
				stats.RevenueGrowth = k.PercentChange
			case analytics.KeyTotalOrders:
				stats.OrdersGrowth = k.PercentChange
			case analytics.KeyNewCustomers:
				stats.CustomersGrowth = k.PercentChange
			}
		}
		return nil
	})
	g.Go(func() error {
		orders, _, err := s.orderRepo.List(gctx, &repository.OrderFilterParams{
			Pagination: &pagination.PaginationParams{Page: 1, PerPage: dashboardRecentLimit},
		})
		if err != nil {
			return err
		}
		stats.RecentOrders = orders
		return nil
	})
	g.Go(func() error {
		products, _, err := s.productRepo.List(gctx, &repository.ProductFilterParams{
			Pagination: &pagination.PaginationParams{Page: 1, PerPage: dashboardRecentLimit},
		})
		if err != nil {
			return err
		}
		stats.RecentProducts = products
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if stats.RecentOrders == nil {
		stats.RecentOrders = []entity.Order{}
	}
	if stats.RecentProducts == nil {
		stats.RecentProducts = []entity.Product{}
	}
	return stats, nil
}
