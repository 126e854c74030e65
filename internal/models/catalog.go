package models

import (
	"encoding/json"
	"time"
)

type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	ParentID    *string   `json:"parent_id,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

type Product struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Slug             string          `json:"slug"`
	Description      string          `json:"description"`
	ShortDescription string          `json:"short_description"`
	SKU              string          `json:"sku"`
	Price            float64         `json:"price"`
	ComparePrice     *float64        `json:"compare_price,omitempty"`
	CategoryIDs      []string        `json:"category_ids"`
	Attributes       json.RawMessage `json:"attributes"` // free-form, stored as JSONB
	IsActive         bool            `json:"is_active"`
	IsDigital        bool            `json:"is_digital"`
	Weight           *float64        `json:"weight,omitempty"`
	Dimensions       json.RawMessage `json:"dimensions,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`

	Variants []*ProductVariant `json:"variants,omitempty"`
}

type ProductVariant struct {
	ID         string          `json:"id"`
	ProductID  string          `json:"product_id"`
	Name       string          `json:"name"`
	SKU        string          `json:"sku"`
	Price      float64         `json:"price"`
	Attributes json.RawMessage `json:"attributes"` // e.g. {"color":"red","size":"L"}
	Stock      int             `json:"stock"`
	IsActive   bool            `json:"is_active"`
	CreatedAt  time.Time       `json:"created_at"`

	LowStockAlertSent bool `json:"-"`
}

// ProductFilter carries the list-endpoint query parameters.
type ProductFilter struct {
	CategorySlug string
	Search       string
	PriceMin     *float64
	PriceMax     *float64
	ActiveOnly   bool
	Limit        int
	Offset       int
}
