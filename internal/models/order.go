package models

import (
	"encoding/json"
	"time"
)

const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
	OrderStatusRefunded   = "refunded"
)

// orderTransitions is the allowed status graph. Cancelled and refunded are
// terminal.
var orderTransitions = map[string][]string{
	OrderStatusPending:    {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:  {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
	OrderStatusDelivered:  {OrderStatusRefunded},
}

func OrderStatusCanTransition(from, to string) bool {
	for _, s := range orderTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type Order struct {
	ID          string  `json:"id"`
	OrderNumber string  `json:"order_number"`
	UserID      int     `json:"user_id"`
	Status      string  `json:"status"`
	TotalAmount float64 `json:"total_amount"`
	TaxAmount   float64 `json:"tax_amount"`
	ShipAmount  float64 `json:"shipping_amount"`
	Discount    float64 `json:"discount_amount"`

	BillingFirstName string          `json:"billing_first_name"`
	BillingLastName  string          `json:"billing_last_name"`
	BillingEmail     string          `json:"billing_email"`
	BillingPhone     string          `json:"billing_phone"`
	BillingAddress   json.RawMessage `json:"billing_address"`

	ShippingFirstName string          `json:"shipping_first_name"`
	ShippingLastName  string          `json:"shipping_last_name"`
	ShippingAddress   json.RawMessage `json:"shipping_address"`

	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items []*OrderItem `json:"items,omitempty"`
}

type OrderItem struct {
	ID         string    `json:"id"`
	OrderID    string    `json:"order_id"`
	VariantID  string    `json:"variant_id"`
	Quantity   int       `json:"quantity"`
	UnitPrice  float64   `json:"unit_price"`
	TotalPrice float64   `json:"total_price"`
	CreatedAt  time.Time `json:"created_at"`
}
