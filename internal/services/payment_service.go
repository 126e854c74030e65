package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"shopcore/internal/models"
	"shopcore/internal/repositories"
)

var ErrPaymentNotFound = errors.New("payment not found")

type PaymentService interface {
	CreatePayment(p *models.Payment) error
	GetPayment(id string) (*models.Payment, error)
	ListByOrder(orderID string) ([]*models.Payment, error)
	ListPayments(limit, offset int) ([]*models.Payment, error)
	// Transition moves a payment along pending -> succeeded|failed and
	// succeeded -> refunded.
	Transition(id, status string) error
}

type paymentService struct {
	payments repositories.PaymentRepository
	orders   repositories.OrderRepository
}

func NewPaymentService(payments repositories.PaymentRepository, orders repositories.OrderRepository) PaymentService {
	return &paymentService{payments: payments, orders: orders}
}

func (s *paymentService) CreatePayment(p *models.Payment) error {
	order, err := s.orders.GetByID(p.OrderID)
	if err != nil {
		return err
	}
	if order == nil {
		return ErrOrderNotFound
	}
	p.ID = uuid.NewString()
	p.Status = models.PaymentStatusPending
	if p.Amount == 0 {
		p.Amount = order.TotalAmount
	}
	if p.Currency == "" {
		p.Currency = "USD"
	}
	return s.payments.Create(p)
}

func (s *paymentService) GetPayment(id string) (*models.Payment, error) {
	return s.payments.GetByID(id)
}

func (s *paymentService) ListByOrder(orderID string) ([]*models.Payment, error) {
	return s.payments.ListByOrder(orderID)
}

func (s *paymentService) ListPayments(limit, offset int) ([]*models.Payment, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.payments.List(limit, offset)
}

func (s *paymentService) Transition(id, status string) error {
	p, err := s.payments.GetByID(id)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrPaymentNotFound
	}
	if !models.PaymentStatusCanTransition(p.Status, status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.Status, status)
	}
	return s.payments.UpdateStatus(id, status)
}
