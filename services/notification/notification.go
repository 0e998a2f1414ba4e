package notification

import (
	"context"
	"fmt"
	"time"

	"insurepay/models"

	"go.uber.org/zap"
)

// Status is the outcome shown in a payment email.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

// StatusFor maps a payment outcome to the email status.
func StatusFor(s models.PaymentStatus) Status {
	if s.Succeeded() {
		return StatusSuccess
	}
	return StatusFailed
}

type PaymentNotice struct {
	To           string
	CustomerName string
	Amount       float64
	Status       Status
	InvoiceID    string
	PolicyNames  []string
	AutoPay      bool
	ValidUntil   *time.Time
}

type AutoPayNotice struct {
	To             string
	CustomerName   string
	PolicyID       string
	SubscriptionID string
	ShortURL       string
	Enabled        bool
}

// InvoiceReminderNotice nudges a customer about an invoice still open.
type InvoiceReminderNotice struct {
	To             string
	CustomerName   string
	InvoiceID      string
	Amount         float64
	PaymentLinkURL string
	ValidUntil     time.Time
}

// Notifier sends customer-facing emails.
type Notifier interface {
	NotifyPayment(ctx context.Context, notice PaymentNotice) error
	NotifyAutoPay(ctx context.Context, notice AutoPayNotice) error
	NotifyInvoiceReminder(ctx context.Context, notice InvoiceReminderNotice) error
	NotifyOTP(ctx context.Context, to, code string, ttl time.Duration) error
	SendEmail(ctx context.Context, req models.SendEmailRequest) (string, error)
}

// DefaultNotificationService renders templates and delivers through Resend.
type DefaultNotificationService struct {
	client *EmailClient
	logger *zap.Logger
}

func NewDefaultNotificationService(client *EmailClient, logger *zap.Logger) *DefaultNotificationService {
	return &DefaultNotificationService{client: client, logger: logger}
}

func (s *DefaultNotificationService) NotifyPayment(ctx context.Context, notice PaymentNotice) error {
	html, err := render(paymentTemplate, notice)
	if err != nil {
		return fmt.Errorf("NotifyPayment: render: %w", err)
	}
	subject := "Payment received"
	if notice.Status != StatusSuccess {
		subject = "Payment failed"
	}
	_, err = s.deliver(ctx, notice.To, subject, html, "")
	return err
}

func (s *DefaultNotificationService) NotifyAutoPay(ctx context.Context, notice AutoPayNotice) error {
	html, err := render(autoPayTemplate, notice)
	if err != nil {
		return fmt.Errorf("NotifyAutoPay: render: %w", err)
	}
	subject := "Autopay enabled"
	if !notice.Enabled {
		subject = "Autopay disabled"
	}
	_, err = s.deliver(ctx, notice.To, subject, html, "")
	return err
}

func (s *DefaultNotificationService) NotifyInvoiceReminder(ctx context.Context, notice InvoiceReminderNotice) error {
	html, err := render(reminderTemplate, notice)
	if err != nil {
		return fmt.Errorf("NotifyInvoiceReminder: render: %w", err)
	}
	_, err = s.deliver(ctx, notice.To, "Your premium invoice is awaiting payment", html, "")
	return err
}

func (s *DefaultNotificationService) NotifyOTP(ctx context.Context, to, code string, ttl time.Duration) error {
	html, err := render(otpTemplate, map[string]any{"Code": code, "Minutes": int(ttl.Minutes())})
	if err != nil {
		return fmt.Errorf("NotifyOTP: render: %w", err)
	}
	_, err = s.deliver(ctx, to, "Your verification code", html, "Your verification code is "+code)
	return err
}

func (s *DefaultNotificationService) SendEmail(ctx context.Context, req models.SendEmailRequest) (string, error) {
	return s.deliver(ctx, req.To, req.Subject, req.HTML, req.Text)
}

func (s *DefaultNotificationService) deliver(ctx context.Context, to, subject, html, text string) (string, error) {
	if to == "" {
		return "", fmt.Errorf("notification: recipient is empty")
	}
	if !s.client.IsEnabled() {
		s.logger.Warn("email client is disabled, skipping email send",
			zap.String("to", to), zap.String("subject", subject))
		return "", nil
	}

	id, err := s.client.Send(ctx, to, subject, html, text)
	if err != nil {
		s.logger.Error("failed to send email", zap.String("to", to), zap.String("subject", subject), zap.Error(err))
		return "", err
	}
	s.logger.Info("email sent", zap.String("message_id", id), zap.String("to", to), zap.String("subject", subject))
	return id, nil
}
