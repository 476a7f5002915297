package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stylehub/stylehub-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Product is a sellable catalog item.
type Product struct {
	ID               uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	CategoryID       *uuid.UUID       `gorm:"type:uuid;index" json:"category_id,omitempty"`
	CategoryName     string           `gorm:"size:255" json:"category_name"`
	Name             string           `gorm:"size:255;not null" json:"name"`
	Slug             string           `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Description      string           `gorm:"type:text" json:"description"`
	ShortDescription string           `gorm:"size:500" json:"short_description,omitempty"`
	Price            decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"price"`
	CompareAtPrice   *decimal.Decimal `gorm:"type:numeric(12,2)" json:"compare_at_price,omitempty"`
	Section          enum.Section     `gorm:"size:20;index" json:"section,omitempty"`
	Featured         bool             `gorm:"default:false;index" json:"featured"`
	IsNew            bool             `gorm:"default:false" json:"new"`
	BestSeller       bool             `gorm:"default:false" json:"best_seller"`
	Inventory        int              `gorm:"default:0" json:"inventory"`
	Details          ProductDetails   `gorm:"type:jsonb" json:"details"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
	DeletedAt        gorm.DeletedAt   `gorm:"index" json:"-"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// BeforeCreate generates a UUID before creating a new product
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (Product) TableName() string {
	return "products"
}

func (p *Product) InStock() bool {
	return p.Inventory > 0
}

// CategoryLabel is the name sales are grouped under: the denormalised label
// when present, otherwise the loaded category's name.
func (p *Product) CategoryLabel() string {
	if p.CategoryName != "" {
		return p.CategoryName
	}
	if p.Category != nil {
		return p.Category.Name
	}
	return ""
}

// MarshalJSON adds the derived in_stock flag.
func (p Product) MarshalJSON() ([]byte, error) {
	type Alias Product
	return json.Marshal(&struct {
		Alias
		InStock bool `json:"in_stock"`
	}{
		Alias:   Alias(p),
		InStock: p.InStock(),
	})
}

// Category groups products for browsing.
type Category struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Name        string         `gorm:"size:255;not null" json:"name"`
	Slug        string         `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Description string         `gorm:"type:text" json:"description,omitempty"`
	Section     enum.Section   `gorm:"size:20;index" json:"section,omitempty"`
	Image       string         `gorm:"size:500" json:"image,omitempty"`
	Featured    bool           `gorm:"default:false" json:"featured"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Products []Product `gorm:"foreignKey:CategoryID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new category
func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (Category) TableName() string {
	return "categories"
}
