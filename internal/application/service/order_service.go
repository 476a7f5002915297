package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stylehub/stylehub-api/internal/domain/entity"
	"github.com/stylehub/stylehub-api/internal/domain/enum"
	"github.com/stylehub/stylehub-api/internal/domain/pricing"
	"github.com/stylehub/stylehub-api/internal/domain/repository"
	"github.com/stylehub/stylehub-api/pkg/apperror"
	"github.com/stylehub/stylehub-api/pkg/metrics"
	"github.com/stylehub/stylehub-api/pkg/pagination"
	"github.com/stylehub/stylehub-api/pkg/utils"
	"go.uber.org/zap"
)

// maxOrderNumberAttempts bounds retries on the rare order number collision.
const maxOrderNumberAttempts = 3

// OrderService prices carts and turns them into orders.
type OrderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	metrics     *metrics.Registry
	log         *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	m *metrics.Registry,
	log *zap.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		metrics:     m,
		log:         log.Named("checkout"),
	}
}

// CartItem is one requested product and quantity.
type CartItem struct {
	ProductID uuid.UUID
	Quantity  int
}

// QuoteLine is a priced cart line.
type QuoteLine struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// Quote is a priced cart. Prices always come from the catalog.
type Quote struct {
	Items []QuoteLine `json:"items"`
	pricing.Totals
}

// Quote prices a cart without reserving stock.
func (s *OrderService) Quote(ctx context.Context, items []CartItem) (*Quote, error) {
	quote, _, err := s.quote(ctx, items)
	return quote, err
}

// quote returns the priced cart and the merged quantities per product.
func (s *OrderService) quote(ctx context.Context, items []CartItem) (*Quote, map[uuid.UUID]int, error) {
	if len(items) == 0 {
		return nil, nil, checkoutError("empty_cart", apperror.NewBadRequestError("Cart is empty"))
	}

	// Repeated products are merged; first occurrence fixes the line order.
	quantities := make(map[uuid.UUID]int, len(items))
	order := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, nil, checkoutError("invalid_quantity",
				apperror.NewBadRequestError("Quantity must be greater than zero"))
		}
		if _, seen := quantities[item.ProductID]; !seen {
			order = append(order, item.ProductID)
		}
		quantities[item.ProductID] += item.Quantity
	}

	products, err := s.productRepo.GetByIDs(ctx, order)
	if err != nil {
		return nil, nil, err
	}
	productMap := make(map[uuid.UUID]*entity.Product, len(products))
	for i := range products {
		productMap[products[i].ID] = &products[i]
	}

	quote := &Quote{Items: make([]QuoteLine, 0, len(order))}
	subtotal := decimal.Zero
	for _, id := range order {
		product, ok := productMap[id]
		if !ok {
			return nil, nil, checkoutError("unknown_product", apperror.NewNotFoundError(fmt.Sprintf("Product %s", id)))
		}
		qty := quantities[id]
		line := QuoteLine{
			ProductID:   id,
			ProductName: product.Name,
			UnitPrice:   product.Price,
			Quantity:    qty,
			LineTotal:   product.Price.Mul(decimal.NewFromInt(int64(qty))),
		}
		subtotal = subtotal.Add(line.LineTotal)
		quote.Items = append(quote.Items, line)
	}
	quote.Totals = pricing.Compute(subtotal)
	return quote, quantities, nil
}

// PlaceOrder prices the cart, reserves stock for every line or none, and
// stores a pending order.
func (s *OrderService) PlaceOrder(ctx context.Context, customerID uuid.UUID, items []CartItem) (*entity.Order, error) {
	quote, quantities, err := s.quote(ctx, items)
	if err != nil {
		s.recordFailure(err)
		return nil, err
	}

	failedIDs, err := s.productRepo.AtomicDecrementBatch(ctx, quantities)
	if err != nil {
		return nil, err
	}
	if len(failedIDs) > 0 {
		names := make([]string, 0, len(failedIDs))
		for _, line := range quote.Items {
			for _, id := range failedIDs {
				if line.ProductID == id {
					names = append(names, line.ProductName)
				}
			}
		}
		sort.Strings(names)
		err := checkoutError("insufficient_stock",
			apperror.NewConflictError("Insufficient stock for: "+strings.Join(names, ", ")))
		s.recordFailure(err)
		return nil, err
	}

	order := &entity.Order{
		CustomerID: customerID,
		Status:     enum.OrderStatusPending,
		Subtotal:   quote.Subtotal,
		Shipping:   quote.Shipping,
		Tax:        quote.Tax,
		Total:      quote.Total,
		Items:      make([]entity.OrderItem, 0, len(quote.Items)),
	}
	for _, line := range quote.Items {
		order.Items = append(order.Items, entity.OrderItem{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
		})
	}

	if err := s.persist(ctx, order); err != nil {
		if restoreErr := s.productRepo.AtomicIncrementBatch(ctx, quantities); restoreErr != nil {
			s.log.Error("failed to restore stock", zap.Error(restoreErr))
		}
		s.metrics.CheckoutFailed.WithLabelValues("persist").Inc()
		return nil, err
	}

	s.metrics.OrdersPlaced.Inc()
	s.metrics.OrderRevenue.Add(order.Total.InexactFloat64())
	s.log.Info("order placed",
		zap.String("order_number", order.OrderNumber),
		zap.String("customer_id", customerID.String()),
		zap.String("total", order.Total.StringFixed(2)),
		zap.Int("items", order.ItemCount()))

	return s.orderRepo.GetByID(ctx, order.ID)
}

func (s *OrderService) persist(ctx context.Context, order *entity.Order) error {
	var err error
	for attempt := 0; attempt < maxOrderNumberAttempts; attempt++ {
		order.OrderNumber = utils.GenerateOrderNumber()
		order.CreatedAt = time.Time{}
		err = s.orderRepo.Create(ctx, order)
		if !errors.Is(err, repository.ErrDuplicate) {
			return err
		}
	}
	return fmt.Errorf("allocate order number: %w", err)
}

// ListCustomerOrders lists the caller's own orders, newest first.
func (s *OrderService) ListCustomerOrders(ctx context.Context, customerID uuid.UUID, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.Order], error) {
	return s.ListOrders(ctx, &repository.OrderFilterParams{
		Pagination: params,
		CustomerID: &customerID,
	})
}

// ListOrders lists orders across all customers.
func (s *OrderService) ListOrders(ctx context.Context, params *repository.OrderFilterParams) (*pagination.PaginatedResult[entity.Order], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()

	orders, total, err := s.orderRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(orders, pag), nil
}

// GetOrder returns an order. Customers only see their own; another
// customer's order is reported as missing.
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID, requester uuid.UUID, isAdmin bool) (*entity.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil || (!isAdmin && order.CustomerID != requester) {
		return nil, apperror.NewNotFoundError("Order")
	}
	return order, nil
}

// checkoutFailure tags an error with the reason recorded in metrics.
type checkoutFailure struct {
	reason string
	*apperror.AppError
}

func (e *checkoutFailure) Unwrap() error { return e.AppError }

func checkoutError(reason string, err *apperror.AppError) error {
	return &checkoutFailure{reason: reason, AppError: err}
}

func (s *OrderService) recordFailure(err error) {
	var cf *checkoutFailure
	if errors.As(err, &cf) {
		s.metrics.CheckoutFailed.WithLabelValues(cf.reason).Inc()
	}
}
