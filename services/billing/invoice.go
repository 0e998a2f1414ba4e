package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	ierr "insurepay/errors"
	"insurepay/models"
	"insurepay/services/gateway"
	"insurepay/services/notification"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// CreateInvoice bills a customer for the requested policies that are not
// already paid through the current period.
func (s *DefaultBillingService) CreateInvoice(ctx context.Context, req models.CreateInvoiceRequest) (*models.Invoice, error) {
	if req.Months < 1 {
		return nil, validationError("months must be at least 1")
	}
	policyIDs := lo.Uniq(lo.Compact(req.PolicyIDs))
	if len(policyIDs) == 0 {
		return nil, validationError("at least one policy id is required")
	}

	customer, err := s.Customers.GetByID(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}

	policies, err := s.Policies.GetByIDs(ctx, policyIDs)
	if err != nil {
		return nil, err
	}
	byID := lo.KeyBy(policies, func(p models.Policy) string { return p.ID })
	for _, id := range policyIDs {
		if _, ok := byID[id]; !ok {
			return nil, notFound("policy", id)
		}
	}

	now := s.now()
	var lines []models.TaxBreakdown
	var included []string
	for _, id := range policyIDs {
		if h := customer.History(id); h != nil && h.ValidUntil != nil && h.ValidUntil.After(now) {
			s.Logger.Debug("Skipping policy already paid through current period",
				zap.String("customerId", customer.ID), zap.String("policyId", id), zap.Time("validUntil", *h.ValidUntil))
			continue
		}
		policy := byID[id]
		rate, err := s.Policies.GetTaxRate(ctx, policy.Type)
		if err != nil {
			return nil, err
		}
		lines = append(lines, priceLine(policy, req.Months, rate.GSTRate))
		included = append(included, id)
	}
	if len(included) == 0 {
		return nil, errNoValidPolicies
	}

	insurerID := req.InsurerID
	if insurerID == "" {
		insurerID = byID[included[0]].InsurerID
	}

	validUntil := now.AddDate(0, req.Months, 0)
	if req.ValidUpto != nil {
		validUntil = req.ValidUpto.UTC()
	}

	invoice := &models.Invoice{
		ID:           uuid.New().String(),
		CustomerID:   customer.ID,
		InsurerID:    insurerID,
		Amount:       sumTotals(lines),
		Status:       models.InvoiceStatusUnpaid,
		ValidUntil:   validUntil,
		TaxBreakdown: lines,
		CreatedAt:    now,
		UpdatedAt:    now,
		PolicyIDs:    included,
		Months:       req.Months,
	}

	amountMinor := toMinor(invoice.Amount)
	order, err := s.Gateway.CreateOrder(ctx, gateway.OrderRequest{
		AmountMinor: amountMinor,
		Currency:    s.Options.Currency,
		Receipt:     invoice.ID,
		Notes: map[string]string{
			gateway.NoteInvoiceID:  invoice.ID,
			gateway.NoteCustomerID: customer.ID,
		},
	})
	if err != nil {
		s.Logger.Error("Failed to create gateway order", zap.String("invoiceId", invoice.ID), zap.Error(err))
		return nil, err
	}
	invoice.GatewayOrderID = order.ID

	link, err := s.Gateway.CreatePaymentLink(ctx, gateway.PaymentLinkRequest{
		AmountMinor:   amountMinor,
		Currency:      s.Options.Currency,
		Description:   fmt.Sprintf("Premium for %d month(s): %s", req.Months, strings.Join(included, ", ")),
		CustomerName:  customer.Name,
		CustomerEmail: customer.Email,
		CustomerPhone: customer.Phone,
		ExpireBy:      now.Add(s.Options.LinkExpiry).Unix(),
		Notes: map[string]string{
			gateway.NoteOrderID:    order.ID,
			gateway.NoteInvoiceID:  invoice.ID,
			gateway.NoteCustomerID: customer.ID,
		},
	})
	if err != nil {
		s.Logger.Error("Failed to create payment link", zap.String("invoiceId", invoice.ID), zap.String("orderId", order.ID), zap.Error(err))
		return nil, err
	}
	invoice.PaymentLinkURL = link.ShortURL

	for _, id := range included {
		h := customer.UpsertHistory(id)
		vu := validUntil
		h.Status = models.HistoryStatusPendingInvoice
		h.ValidUntil = &vu
	}
	customer.UpdatedAt = now

	err = s.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.Invoices.Create(ctx, invoice); err != nil {
			return err
		}
		return s.Customers.Save(ctx, customer)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Info("Invoice created",
		zap.String("invoiceId", invoice.ID),
		zap.String("customerId", customer.ID),
		zap.Float64("amount", invoice.Amount),
		zap.Strings("policyIds", included))

	s.scheduleReminder(ctx, invoice, now)
	return invoice, nil
}

// scheduleReminder queues a reminder ReminderLead before the payment link
// expires. Failures are logged; the invoice stands either way.
func (s *DefaultBillingService) scheduleReminder(ctx context.Context, invoice *models.Invoice, now time.Time) {
	if s.Reminders == nil || s.Options.ReminderLead <= 0 {
		return
	}
	at := now.Add(s.Options.LinkExpiry - s.Options.ReminderLead)
	if !at.After(now) {
		return
	}
	if err := s.Reminders.ScheduleInvoiceReminder(ctx, invoice.ID, invoice.CustomerID, at); err != nil {
		s.Logger.Warn("Failed to schedule invoice reminder", zap.String("invoiceId", invoice.ID), zap.Error(err))
	}
}

func (s *DefaultBillingService) SendInvoiceReminder(ctx context.Context, invoiceID string) error {
	invoice, err := s.GetInvoice(ctx, invoiceID)
	if err != nil {
		return err
	}
	if invoice.Status.Settled() {
		s.Logger.Debug("Invoice already settled, reminder dropped", zap.String("invoiceId", invoice.ID))
		return nil
	}
	customer, err := s.Customers.GetByID(ctx, invoice.CustomerID)
	if err != nil {
		return err
	}
	return s.Notifier.NotifyInvoiceReminder(ctx, notification.InvoiceReminderNotice{
		To:             customer.Email,
		CustomerName:   customer.Name,
		InvoiceID:      invoice.ID,
		Amount:         invoice.Amount,
		PaymentLinkURL: invoice.PaymentLinkURL,
		ValidUntil:     invoice.ValidUntil,
	})
}

func (s *DefaultBillingService) GetInvoice(ctx context.Context, invoiceID string) (*models.Invoice, error) {
	if strings.TrimSpace(invoiceID) == "" {
		return nil, validationError("invoice id is required")
	}
	return s.Invoices.GetByID(ctx, invoiceID)
}

// ListCustomerInvoices returns the customer's invoices in any of statuses, or
// all of them when none are given.
func (s *DefaultBillingService) ListCustomerInvoices(ctx context.Context, customerID string, statuses ...models.InvoiceStatus) ([]models.Invoice, error) {
	for _, st := range statuses {
		if !st.Valid() {
			return nil, ierr.NewErrorf("invalid invoice status %q", st).
				WithHintf("Unknown invoice status %q", st).
				Mark(ierr.ErrValidation)
		}
	}
	if _, err := s.Customers.GetByID(ctx, customerID); err != nil {
		return nil, err
	}
	return s.Invoices.ListByCustomerAndStatusIn(ctx, customerID, statuses)
}

func (s *DefaultBillingService) ListInsurerInvoices(ctx context.Context, insurerID string) ([]models.Invoice, error) {
	if strings.TrimSpace(insurerID) == "" {
		return nil, validationError("insurer id is required")
	}
	return s.Invoices.ListByInsurer(ctx, insurerID)
}
