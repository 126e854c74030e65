package services

import (
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"shopcore/internal/models"
	"shopcore/internal/repositories"
	"shopcore/internal/utils"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrEmptyOrder        = errors.New("order has no items")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// OrderItemInput is a checkout line item. Prices come from the catalog, not
// from the client.
type OrderItemInput struct {
	VariantID string `json:"variant_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

type OrderService interface {
	PlaceOrder(order *models.Order, items []OrderItemInput) error
	GetOrder(id string) (*models.Order, error)
	GetOrderByNumber(number string) (*models.Order, error)
	ListOrdersByUser(userID, limit, offset int) ([]*models.Order, error)
	ListOrders(limit, offset int) ([]*models.Order, error)
	UpdateStatus(id, status string) error
}

type orderService struct {
	orders   repositories.OrderRepository
	products repositories.ProductRepository
	queue    Dispatcher
}

func NewOrderService(orders repositories.OrderRepository, products repositories.ProductRepository, queue Dispatcher) OrderService {
	return &orderService{orders: orders, products: products, queue: queue}
}

// PlaceOrder prices the items against the catalog, creates the order in
// pending state with stock decremented atomically, and enqueues the
// confirmation email.
func (s *orderService) PlaceOrder(order *models.Order, items []OrderItemInput) error {
	if len(items) == 0 {
		return ErrEmptyOrder
	}

	order.ID = uuid.NewString()
	order.OrderNumber = utils.NewOrderNumber(order.ID[:8])
	order.Status = models.OrderStatusPending

	var subtotal float64
	for _, in := range items {
		variant, err := s.products.GetVariant(in.VariantID)
		if err != nil {
			return err
		}
		if variant == nil || !variant.IsActive {
			return ErrVariantNotFound
		}
		line := &models.OrderItem{
			ID:         uuid.NewString(),
			OrderID:    order.ID,
			VariantID:  variant.ID,
			Quantity:   in.Quantity,
			UnitPrice:  variant.Price,
			TotalPrice: variant.Price * float64(in.Quantity),
		}
		subtotal += line.TotalPrice
		order.Items = append(order.Items, line)
	}
	order.TotalAmount = subtotal + order.TaxAmount + order.ShipAmount - order.Discount

	if err := s.orders.CreateWithItems(order); err != nil {
		return err
	}

	// Confirmation is best-effort; the order itself is already durable.
	if s.queue == nil {
		log.Printf("[order][place] no queue configured, skipping confirmation for order=%s", order.OrderNumber)
		return nil
	}
	if err := s.queue.DispatchOrderConfirmation(order.ID); err != nil {
		log.Printf("[order][place] confirmation dispatch failed order=%s: %v", order.OrderNumber, err)
	}
	return nil
}

func (s *orderService) GetOrder(id string) (*models.Order, error) {
	return s.orders.GetByID(id)
}

func (s *orderService) GetOrderByNumber(number string) (*models.Order, error) {
	return s.orders.GetByOrderNumber(number)
}

func (s *orderService) ListOrdersByUser(userID, limit, offset int) ([]*models.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.orders.ListByUser(userID, limit, offset)
}

func (s *orderService) ListOrders(limit, offset int) ([]*models.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.orders.ListAll(limit, offset)
}

func (s *orderService) UpdateStatus(id, status string) error {
	order, err := s.orders.GetByID(id)
	if err != nil {
		return err
	}
	if order == nil {
		return ErrOrderNotFound
	}
	if !models.OrderStatusCanTransition(order.Status, status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, status)
	}
	return s.orders.UpdateStatus(id, status)
}
