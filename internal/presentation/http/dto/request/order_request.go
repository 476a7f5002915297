package request

import "github.com/google/uuid"

// CartItemRequest is one line of a cart.
type CartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity"`
}

// CartRequest is the body of quote and checkout requests.
type CartRequest struct {
	Items []CartItemRequest `json:"items" binding:"dive"`
}

// OrderFilterRequest represents admin order filter parameters. Dates are
// RFC 3339 or YYYY-MM-DD.
type OrderFilterRequest struct {
	Status     string `form:"status"`
	CustomerID string `form:"customer_id"`
	StartDate  string `form:"start_date"`
	EndDate    string `form:"end_date"`
	Page       int    `form:"page"`
	PerPage    int    `form:"per_page"`
}

// CustomerFilterRequest represents customer list parameters
type CustomerFilterRequest struct {
	Search  string `form:"search"`
	Page    int    `form:"page"`
	PerPage int    `form:"per_page"`
}
