package services

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"shopcore/internal/models"
)

// VerificationMailer is the transport contract the delivery job needs.
type VerificationMailer interface {
	SendVerificationEmail(to, verifyURL string) error
}

type EmailService interface {
	VerificationMailer
	SendOrderConfirmation(order *models.Order, invoicePath string) error
}

type emailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) EmailService {
	return &emailService{
		dialer: gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword),
		from:   fromEmail,
	}
}

func (s *emailService) SendVerificationEmail(to, verifyURL string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Verify your email address")

	body := fmt.Sprintf(`
		<h2>Welcome!</h2>
		<p>Please confirm your email address to activate your account.</p>
		<p><a href="%s">Verify my email</a></p>
		<p>This link is valid for 24 hours. If you did not create an account,
		you can safely ignore this email.</p>
	`, verifyURL)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	return nil
}

func (s *emailService) SendOrderConfirmation(order *models.Order, invoicePath string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", order.BillingEmail)
	m.SetHeader("Subject", fmt.Sprintf("Order Confirmation #%s", order.OrderNumber))

	body := fmt.Sprintf(`
		<h2>Thank you for your order, %s!</h2>
		<p>Your order <strong>%s</strong> has been received and is being processed.</p>
		<p>Order total: %.2f</p>
		<p>The invoice is attached to this email.</p>
	`, order.BillingFirstName, order.OrderNumber, order.TotalAmount)
	m.SetBody("text/html", body)

	if invoicePath != "" {
		m.Attach(invoicePath)
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send order confirmation: %w", err)
	}
	return nil
}
