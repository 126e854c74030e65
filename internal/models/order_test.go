package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusShipped, false},
		{OrderStatusConfirmed, OrderStatusProcessing, true},
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusShipped, OrderStatusCancelled, false},
		{OrderStatusDelivered, OrderStatusRefunded, true},
		{OrderStatusCancelled, OrderStatusPending, false},
		{OrderStatusRefunded, OrderStatusPending, false},
		{"bogus", OrderStatusPending, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, OrderStatusCanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestPaymentStatusCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{PaymentStatusPending, PaymentStatusSucceeded, true},
		{PaymentStatusPending, PaymentStatusFailed, true},
		{PaymentStatusSucceeded, PaymentStatusRefunded, true},
		{PaymentStatusSucceeded, PaymentStatusPending, false},
		{PaymentStatusFailed, PaymentStatusSucceeded, false},
		{PaymentStatusRefunded, PaymentStatusPending, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PaymentStatusCanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}
