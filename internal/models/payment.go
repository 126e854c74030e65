package models

import "time"

const (
	PaymentStatusPending   = "pending"
	PaymentStatusSucceeded = "succeeded"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

var paymentTransitions = map[string][]string{
	PaymentStatusPending:   {PaymentStatusSucceeded, PaymentStatusFailed},
	PaymentStatusSucceeded: {PaymentStatusRefunded},
}

func PaymentStatusCanTransition(from, to string) bool {
	for _, s := range paymentTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Payment is a minimal gateway record: gateway name, amount, currency,
// status and an optional gateway-side reference.
type Payment struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"order_id"`
	Gateway   string    `json:"gateway"`
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	Status    string    `json:"status"`
	Reference string    `json:"reference,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
