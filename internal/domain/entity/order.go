package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stylehub/stylehub-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Order is a placed checkout. Orders are never updated after creation.
type Order struct {
	ID          uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	OrderNumber string           `gorm:"size:32;uniqueIndex;not null" json:"order_number"`
	CustomerID  uuid.UUID        `gorm:"type:uuid;not null;index" json:"customer_id"`
	Status      enum.OrderStatus `gorm:"default:0;index" json:"status"`
	Subtotal    decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	Shipping    decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"shipping"`
	Tax         decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"tax"`
	Total       decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"total"`
	CreatedAt   time.Time        `gorm:"index" json:"created_at"`

	Items    []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
	Customer *User       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
}

// BeforeCreate generates a UUID before creating a new order
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

func (Order) TableName() string {
	return "orders"
}

// ItemCount is the total quantity across all line items.
func (o *Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// OrderItem is a line item. UnitPrice is the catalog price at checkout time.
type OrderItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	ProductName string          `gorm:"size:255" json:"product_name"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
}

// BeforeCreate generates a UUID before creating a new order item
func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (OrderItem) TableName() string {
	return "order_items"
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
