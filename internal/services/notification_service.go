package services

import (
	"fmt"
	"log"

	"shopcore/internal/models"
	"shopcore/internal/repositories"
)

// InvoiceRenderer produces a PDF invoice file for an order.
type InvoiceRenderer interface {
	Generate(order *models.Order) (string, error)
}

// NotificationService runs the worker-side jobs that are not part of the
// verification flow: order confirmation emails and the low-stock sweep.
type NotificationService struct {
	orders   repositories.OrderRepository
	products repositories.ProductRepository
	mailer   EmailService
	invoices InvoiceRenderer
	alerts   *AlertService
}

func NewNotificationService(
	orders repositories.OrderRepository,
	products repositories.ProductRepository,
	mailer EmailService,
	invoices InvoiceRenderer,
	alerts *AlertService,
) *NotificationService {
	return &NotificationService{
		orders:   orders,
		products: products,
		mailer:   mailer,
		invoices: invoices,
		alerts:   alerts,
	}
}

// SendOrderConfirmation renders the invoice and mails it to the billing
// address. A missing order is a silent no-op; a failed invoice render still
// sends the email without the attachment.
func (s *NotificationService) SendOrderConfirmation(orderID string) error {
	order, err := s.orders.GetByID(orderID)
	if err != nil {
		return fmt.Errorf("confirmation lookup: %w", err)
	}
	if order == nil {
		log.Printf("[notify][confirm] order %s gone, skipping", orderID)
		return nil
	}

	invoicePath := ""
	if s.invoices != nil {
		invoicePath, err = s.invoices.Generate(order)
		if err != nil {
			log.Printf("[notify][confirm] invoice render failed order=%s: %v", order.OrderNumber, err)
			invoicePath = ""
		}
	}

	if err := s.mailer.SendOrderConfirmation(order, invoicePath); err != nil {
		return fmt.Errorf("confirmation send order=%s: %w", order.OrderNumber, err)
	}
	log.Printf("[notify][confirm] sent order=%s to=%s", order.OrderNumber, order.BillingEmail)
	return nil
}

// SweepLowStock alerts once per variant that has dropped to the threshold.
// The sent flag keeps the sweep from repeating an alert until a restock
// re-arms it.
func (s *NotificationService) SweepLowStock(threshold int) error {
	variants, err := s.products.ListLowStock(threshold)
	if err != nil {
		return fmt.Errorf("low stock sweep: %w", err)
	}
	for _, v := range variants {
		s.alerts.NotifyLowStock(v)
		if err := s.products.MarkLowStockAlerted(v.ID); err != nil {
			log.Printf("[notify][stock] mark alerted failed variant=%s: %v", v.ID, err)
			continue
		}
		log.Printf("[notify][stock] low stock alert variant=%s sku=%s stock=%d", v.ID, v.SKU, v.Stock)
	}
	return nil
}
