package billing

import (
	"context"
	"time"

	customerRepo "insurepay/database/repository/customer"
	invoiceRepo "insurepay/database/repository/invoice"
	paymentRepo "insurepay/database/repository/payment"
	policyRepo "insurepay/database/repository/policy"

	"insurepay/database"
	"insurepay/models"
	"insurepay/services/gateway"
	"insurepay/services/notification"

	"go.uber.org/zap"
)

type BillingService interface {
	// Invoices
	CreateInvoice(ctx context.Context, req models.CreateInvoiceRequest) (*models.Invoice, error)
	GetInvoice(ctx context.Context, invoiceID string) (*models.Invoice, error)
	// SendInvoiceReminder emails the customer when the invoice is still open.
	SendInvoiceReminder(ctx context.Context, invoiceID string) error
	ListCustomerInvoices(ctx context.Context, customerID string, statuses ...models.InvoiceStatus) ([]models.Invoice, error)
	ListInsurerInvoices(ctx context.Context, insurerID string) ([]models.Invoice, error)

	// Payments
	ProcessPayment(ctx context.Context, req models.ProcessPaymentRequest) (*models.Payment, error)
	RecordCashPayment(ctx context.Context, invoiceID string) (*models.Payment, error)
	ListCustomerPayments(ctx context.Context, customerID string) ([]models.Payment, error)
	HandleWebhook(ctx context.Context, event *gateway.WebhookEvent) (*models.Payment, error)

	// Autopay
	EnableAutoPay(ctx context.Context, customerID, invoiceID string, months int, amount float64) (string, error)
	EnableAutoPayPolicy(ctx context.Context, customerID, policyID string, months int, amount float64) (string, error)
	DisableAutoPay(ctx context.Context, customerID, subscriptionID, policyID string) error
	AutoPayStatus(ctx context.Context, customerID string) (*models.AutoPayStatus, error)
}

// ReminderScheduler queues a payment reminder for later delivery.
type ReminderScheduler interface {
	ScheduleInvoiceReminder(ctx context.Context, invoiceID, customerID string, at time.Time) error
}

// Options carries the tunables read from config.
type Options struct {
	Currency       string
	AutoPayTaxRate float64
	LinkExpiry     time.Duration
	// ReminderLead is how long before the payment link expires a reminder
	// goes out. Zero disables reminders.
	ReminderLead time.Duration
}

// DefaultBillingService is the production implementation.
type DefaultBillingService struct {
	Customers customerRepo.CustomerRepository
	Policies  policyRepo.PolicyRepository
	Invoices  invoiceRepo.InvoiceRepository
	Payments  paymentRepo.PaymentRepository
	Tx        database.TxRunner
	Gateway   gateway.Gateway
	Notifier  notification.Notifier
	Logger    *zap.Logger
	Options   Options

	// Reminders is optional.
	Reminders ReminderScheduler

	// Now is swapped in tests.
	Now func() time.Time
}

func NewDefaultBillingService(
	customers customerRepo.CustomerRepository,
	policies policyRepo.PolicyRepository,
	invoices invoiceRepo.InvoiceRepository,
	payments paymentRepo.PaymentRepository,
	tx database.TxRunner,
	gw gateway.Gateway,
	notifier notification.Notifier,
	logger *zap.Logger,
	opts Options,
) *DefaultBillingService {
	if opts.Currency == "" {
		opts.Currency = "INR"
	}
	if opts.AutoPayTaxRate == 0 {
		opts.AutoPayTaxRate = defaultAutoPayTaxRate
	}
	if opts.LinkExpiry == 0 {
		opts.LinkExpiry = 72 * time.Hour
	}
	if tx == nil {
		tx = database.NoopTxRunner{}
	}
	return &DefaultBillingService{
		Customers: customers,
		Policies:  policies,
		Invoices:  invoices,
		Payments:  payments,
		Tx:        tx,
		Gateway:   gw,
		Notifier:  notifier,
		Logger:    logger,
		Options:   opts,
		Now:       time.Now,
	}
}

func (s *DefaultBillingService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}
