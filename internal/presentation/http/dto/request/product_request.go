package request

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stylehub/stylehub-api/internal/domain/enum"
)

// CreateProductRequest represents a product creation request. Details is
// kept raw and decoded by the product service.
type CreateProductRequest struct {
	CategoryID       uuid.UUID        `json:"category_id"`
	Name             string           `json:"name" binding:"max=255"`
	Description      string           `json:"description"`
	ShortDescription string           `json:"short_description" binding:"max=500"`
	Price            decimal.Decimal  `json:"price"`
	CompareAtPrice   *decimal.Decimal `json:"compare_at_price"`
	Section          enum.Section     `json:"section"`
	Featured         bool             `json:"featured"`
	IsNew            bool             `json:"new"`
	BestSeller       bool             `json:"best_seller"`
	Inventory        int              `json:"inventory"`
	Details          json.RawMessage  `json:"details"`
}

// UpdateProductRequest represents a product update request
type UpdateProductRequest struct {
	CategoryID       *uuid.UUID       `json:"category_id"`
	Name             *string          `json:"name" binding:"omitempty,max=255"`
	Description      *string          `json:"description"`
	ShortDescription *string          `json:"short_description" binding:"omitempty,max=500"`
	Price            *decimal.Decimal `json:"price"`
	CompareAtPrice   *decimal.Decimal `json:"compare_at_price"`
	Section          *enum.Section    `json:"section"`
	Featured         *bool            `json:"featured"`
	IsNew            *bool            `json:"new"`
	BestSeller       *bool            `json:"best_seller"`
	Inventory        *int             `json:"inventory"`
	Details          json.RawMessage  `json:"details"`
}

// ProductFilterRequest represents product filter parameters
type ProductFilterRequest struct {
	Search     string `form:"search"`
	CategoryID string `form:"category_id"`
	Section    string `form:"section"`
	Featured   *bool  `form:"featured"`
	Page       int    `form:"page"`
	PerPage    int    `form:"per_page"`
}

// CategoryRequest is used for category create and update.
type CategoryRequest struct {
	Name        string       `json:"name" binding:"max=255"`
	Description string       `json:"description"`
	Section     enum.Section `json:"section"`
	Image       string       `json:"image" binding:"omitempty,max=500"`
	Featured    bool         `json:"featured"`
}
