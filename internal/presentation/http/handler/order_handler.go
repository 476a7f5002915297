package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stylehub/stylehub-api/internal/application/service"
	"github.com/stylehub/stylehub-api/internal/domain/enum"
	"github.com/stylehub/stylehub-api/internal/domain/repository"
	"github.com/stylehub/stylehub-api/internal/presentation/http/dto/request"
	"github.com/stylehub/stylehub-api/internal/presentation/http/dto/response"
	"github.com/stylehub/stylehub-api/pkg/pagination"
)

// OrderHandler handles cart pricing, checkout and order queries
type OrderHandler struct {
	orderService *service.OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func cartItems(req *request.CartRequest) []service.CartItem {
	items := make([]service.CartItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.CartItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return items
}

// Quote handles pricing a cart without placing an order
func (h *OrderHandler) Quote(c *gin.Context) {
	var req request.CartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	quote, err := h.orderService.Quote(c.Request.Context(), cartItems(&req))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Cart priced successfully", quote)
}

// Create handles checkout
func (h *OrderHandler) Create(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.CartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	order, err := h.orderService.PlaceOrder(c.Request.Context(), *userID, cartItems(&req))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Order placed successfully", order)
}

// ListMine handles listing the caller's own orders
func (h *OrderHandler) ListMine(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var filter request.OrderFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.orderService.ListCustomerOrders(c.Request.Context(), *userID, &pagination.PaginationParams{
		Page:    filter.Page,
		PerPage: filter.PerPage,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, "Orders retrieved successfully", result)
}

// List handles the admin order listing
func (h *OrderHandler) List(c *gin.Context) {
	var filter request.OrderFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	params := &repository.OrderFilterParams{
		Pagination: &pagination.PaginationParams{
			Page:    filter.Page,
			PerPage: filter.PerPage,
		},
	}

	if filter.Status != "" {
		status, err := enum.ParseOrderStatus(filter.Status)
		if err != nil {
			response.BadRequest(c, "Invalid status")
			return
		}
		params.Status = &status
	}
	if filter.CustomerID != "" {
		customerID, err := uuid.Parse(filter.CustomerID)
		if err != nil {
			response.BadRequest(c, "Invalid customer_id")
			return
		}
		params.CustomerID = &customerID
	}
	if filter.StartDate != "" {
		start, err := parseDate(filter.StartDate)
		if err != nil {
			response.BadRequest(c, "Invalid start_date")
			return
		}
		params.StartDate = &start
	}
	if filter.EndDate != "" {
		end, err := parseDate(filter.EndDate)
		if err != nil {
			response.BadRequest(c, "Invalid end_date")
			return
		}
		params.EndDate = &end
	}

	result, err := h.orderService.ListOrders(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, "Orders retrieved successfully", result)
}

// Get handles getting one order. Customers only see their own.
func (h *OrderHandler) Get(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), id, *userID, IsAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Order retrieved successfully", order)
}
