package billing

import (
	"context"
	"strings"
	"time"

	ierr "insurepay/errors"
	"insurepay/models"
	"insurepay/services/gateway"
	"insurepay/services/notification"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProcessPayment records a gateway confirmation. A non-empty order id selects
// the invoice path; otherwise a subscription id selects the autopay path.
// A confirmation whose gateway payment id was already recorded returns the
// stored payment and changes nothing.
func (s *DefaultBillingService) ProcessPayment(ctx context.Context, req models.ProcessPaymentRequest) (*models.Payment, error) {
	status, ok := models.ParseInvoiceStatus(strings.TrimSpace(req.Status))
	if !ok {
		return nil, ierr.NewErrorf("invalid payment status %q", req.Status).
			WithHintf("Unknown payment status %q", req.Status).
			Mark(ierr.ErrValidation)
	}
	req.OrderID = strings.TrimSpace(req.OrderID)
	req.PaymentID = strings.TrimSpace(req.PaymentID)
	req.SubscriptionID = strings.TrimSpace(req.SubscriptionID)

	if req.PaymentID != "" {
		existing, err := s.Payments.GetByGatewayPaymentID(ctx, req.PaymentID)
		if err == nil {
			s.Logger.Info("Duplicate payment confirmation ignored",
				zap.String("paymentId", req.PaymentID), zap.String("recordId", existing.ID))
			return existing, nil
		}
		if !ierr.IsNotFound(err) {
			return nil, err
		}
	}

	switch {
	case req.OrderID != "":
		return s.processInvoicePayment(ctx, req, status)
	case req.SubscriptionID != "":
		return s.processSubscriptionPayment(ctx, req, status)
	}
	return nil, validationError("either orderId or subscriptionId is required")
}

func (s *DefaultBillingService) processInvoicePayment(ctx context.Context, req models.ProcessPaymentRequest, status models.InvoiceStatus) (*models.Payment, error) {
	invoice, err := s.Invoices.GetByGatewayOrderID(ctx, req.OrderID)
	if err != nil {
		s.Logger.Warn("No invoice for gateway order", zap.String("orderId", req.OrderID), zap.Error(err))
		return nil, err
	}

	final := status
	if req.SubscriptionID != "" && status == models.InvoiceStatusPaid {
		final = models.InvoiceStatusPaidByAutopay
	}

	if invoice.Status.Settled() {
		return s.settledInvoicePayment(ctx, invoice, final)
	}

	return s.settleInvoice(ctx, invoice, final, s.gatewayMethod(), req.PaymentID, req.SubscriptionID)
}

// RecordCashPayment marks an unpaid invoice as collected in cash.
func (s *DefaultBillingService) RecordCashPayment(ctx context.Context, invoiceID string) (*models.Payment, error) {
	invoice, err := s.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Status.Settled() {
		return nil, ierr.NewErrorf("invoice %s is already %s", invoice.ID, invoice.Status).
			WithHintf("Invoice is already %s", invoice.Status).
			Mark(ierr.ErrInvalidOperation)
	}
	return s.settleInvoice(ctx, invoice, models.InvoiceStatusPaidByCash, models.PaymentMethodCash, "", "")
}

// settleInvoice applies final to the invoice, appends a payment and updates
// the history of every covered policy in one transaction.
func (s *DefaultBillingService) settleInvoice(ctx context.Context, invoice *models.Invoice, final models.InvoiceStatus, method models.PaymentMethod, paymentID, subscriptionID string) (*models.Payment, error) {
	customer, err := s.Customers.GetByID(ctx, invoice.CustomerID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	invoice.Status = final
	invoice.UpdatedAt = now
	if subscriptionID != "" {
		invoice.SubscriptionID = subscriptionID
	}

	invoiceID := invoice.ID
	payment := &models.Payment{
		ID:               uuid.New().String(),
		InvoiceID:        &invoiceID,
		CustomerID:       invoice.CustomerID,
		InsurerID:        invoice.InsurerID,
		Amount:           invoice.Amount,
		Tax:              invoiceTax(invoice),
		Status:           models.PaymentStatus(final),
		GatewayPaymentID: paymentID,
		SubscriptionID:   subscriptionID,
		Method:           method,
		AutoPay:          subscriptionID != "",
		TaxBreakdown:     invoice.TaxBreakdown,
		PaidAt:           now,
		PolicyIDs:        invoice.PolicyIDs,
	}
	if policies, err := s.Policies.GetByIDs(ctx, invoice.PolicyIDs); err == nil {
		payment.PolicyNames = lo.Map(policies, func(p models.Policy, _ int) string { return p.Name })
	}

	var validUntil *time.Time
	// Cash extends coverage only when recorded by the insurer.
	extends := final == models.InvoiceStatusPaid || final == models.InvoiceStatusPaidByAutopay ||
		method == models.PaymentMethodCash
	for _, policyID := range invoice.PolicyIDs {
		h := customer.UpsertHistory(policyID)
		paidAt := now
		h.Status = models.HistoryStatus(final)
		h.LastPaidDate = &paidAt
		if extends {
			until := now.AddDate(0, invoice.Months, 0)
			h.ValidUntil = &until
			validUntil = &until
		}
	}
	customer.UpdatedAt = now

	err = s.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.Payments.Create(ctx, payment); err != nil {
			return err
		}
		if err := s.Invoices.Save(ctx, invoice); err != nil {
			return err
		}
		return s.Customers.Save(ctx, customer)
	})
	if err != nil {
		return s.resolveDuplicate(ctx, paymentID, err)
	}

	s.Logger.Info("Invoice payment recorded",
		zap.String("invoiceId", invoice.ID),
		zap.String("status", string(final)),
		zap.String("paymentId", paymentID),
		zap.Float64("amount", payment.Amount))

	s.notifyPayment(ctx, customer, payment, validUntil)
	return payment, nil
}

// settledInvoicePayment handles a confirmation for an invoice that is already
// paid. Settled invoices are never downgraded, so nothing is written and the
// earlier successful payment is returned.
func (s *DefaultBillingService) settledInvoicePayment(ctx context.Context, invoice *models.Invoice, incoming models.InvoiceStatus) (*models.Payment, error) {
	s.Logger.Warn("Confirmation for settled invoice ignored",
		zap.String("invoiceId", invoice.ID),
		zap.String("status", string(invoice.Status)),
		zap.String("incoming", string(incoming)))

	payments, err := s.Payments.ListByInvoice(ctx, invoice.ID)
	if err != nil {
		return nil, err
	}
	if p, ok := lo.Find(payments, func(p models.Payment) bool { return p.Status.Succeeded() }); ok {
		return &p, nil
	}
	return nil, ierr.NewErrorf("invoice %s is already %s", invoice.ID, invoice.Status).
		WithHintf("Invoice is already %s", invoice.Status).
		Mark(ierr.ErrInvalidOperation)
}

func (s *DefaultBillingService) processSubscriptionPayment(ctx context.Context, req models.ProcessPaymentRequest, status models.InvoiceStatus) (*models.Payment, error) {
	customerID, policyIDs, policyNames := req.CustomerID, req.PolicyIDs, req.PolicyNames
	if customerID == "" || len(policyIDs) == 0 {
		sub, err := s.Gateway.FetchSubscription(ctx, req.SubscriptionID)
		if err != nil {
			return nil, err
		}
		if customerID == "" {
			customerID = sub.Notes[gateway.NoteCustomerID]
		}
		if len(policyIDs) == 0 {
			policyIDs = splitNote(sub.Notes[gateway.NotePolicyIDs])
			if len(policyIDs) == 0 && sub.Notes[gateway.NotePolicyID] != "" {
				policyIDs = []string{sub.Notes[gateway.NotePolicyID]}
			}
		}
		if len(policyNames) == 0 {
			policyNames = splitNote(sub.Notes[gateway.NotePolicyNames])
		}
	}
	policyIDs = lo.Uniq(lo.Compact(policyIDs))
	if customerID == "" || len(policyIDs) == 0 {
		return nil, ierr.NewErrorf("subscription %s is missing customer or policy metadata", req.SubscriptionID).
			WithHint("Subscription metadata does not identify a customer and policy").
			Mark(ierr.ErrValidation)
	}

	customer, err := s.Customers.GetByID(ctx, customerID)
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
	if len(policyNames) == 0 {
		policyNames = lo.Map(policies, func(p models.Policy, _ int) string { return p.Name })
	}

	final := status
	if status == models.InvoiceStatusPaid {
		final = models.InvoiceStatusPaidByAutopay
	}
	succeeded := final.Settled()

	now := s.now()
	amount, tax := autoPayCharge(policies, s.Options.AutoPayTaxRate)
	payment := &models.Payment{
		ID:               uuid.New().String(),
		CustomerID:       customer.ID,
		InsurerID:        policies[0].InsurerID,
		Amount:           amount,
		Tax:              tax,
		Status:           models.PaymentStatus(final),
		GatewayPaymentID: req.PaymentID,
		SubscriptionID:   req.SubscriptionID,
		Method:           models.PaymentMethodAutopaid,
		AutoPay:          true,
		TaxBreakdown: lo.Map(policies, func(p models.Policy, _ int) models.TaxBreakdown {
			return priceLine(p, 1, s.Options.AutoPayTaxRate)
		}),
		PaidAt:      now,
		PolicyIDs:   policyIDs,
		PolicyNames: policyNames,
	}

	var validUntil *time.Time
	if succeeded {
		for _, policyID := range policyIDs {
			h := customer.UpsertHistory(policyID)
			paidAt := now
			until := extendFrom(h.ValidUntil, now, 1)
			h.Status = models.HistoryStatusPaidByAutopay
			h.LastPaidDate = &paidAt
			h.ValidUntil = &until
			h.SubscriptionID = req.SubscriptionID
			validUntil = &until
		}
		customer.AutoPayEnabled = true
		customer.UpdatedAt = now
	}

	err = s.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.Payments.Create(ctx, payment); err != nil {
			return err
		}
		if !succeeded {
			return nil
		}
		return s.Customers.Save(ctx, customer)
	})
	if err != nil {
		return s.resolveDuplicate(ctx, req.PaymentID, err)
	}

	s.Logger.Info("Autopay charge recorded",
		zap.String("subscriptionId", req.SubscriptionID),
		zap.String("customerId", customer.ID),
		zap.String("status", string(final)),
		zap.Float64("amount", amount))

	s.notifyPayment(ctx, customer, payment, validUntil)
	return payment, nil
}

// resolveDuplicate turns a lost race on the gateway payment id into the
// payment that won it.
func (s *DefaultBillingService) resolveDuplicate(ctx context.Context, paymentID string, err error) (*models.Payment, error) {
	if paymentID == "" || !ierr.IsAlreadyExists(err) {
		return nil, err
	}
	existing, getErr := s.Payments.GetByGatewayPaymentID(ctx, paymentID)
	if getErr != nil {
		return nil, err
	}
	s.Logger.Info("Concurrent duplicate payment confirmation resolved", zap.String("paymentId", paymentID))
	return existing, nil
}

func (s *DefaultBillingService) ListCustomerPayments(ctx context.Context, customerID string) ([]models.Payment, error) {
	if _, err := s.Customers.GetByID(ctx, customerID); err != nil {
		return nil, err
	}
	return s.Payments.ListByCustomer(ctx, customerID)
}

func (s *DefaultBillingService) notifyPayment(ctx context.Context, customer *models.Customer, payment *models.Payment, validUntil *time.Time) {
	if s.Notifier == nil {
		return
	}
	invoiceID := ""
	if payment.InvoiceID != nil {
		invoiceID = *payment.InvoiceID
	}
	err := s.Notifier.NotifyPayment(ctx, notification.PaymentNotice{
		To:           customer.Email,
		CustomerName: customer.Name,
		Amount:       payment.Amount,
		Status:       notification.StatusFor(payment.Status),
		InvoiceID:    invoiceID,
		PolicyNames:  payment.PolicyNames,
		AutoPay:      payment.AutoPay,
		ValidUntil:   validUntil,
	})
	if err != nil {
		s.Logger.Warn("Payment notification failed",
			zap.String("customerId", customer.ID), zap.String("paymentRecordId", payment.ID), zap.Error(err))
	}
}

func (s *DefaultBillingService) gatewayMethod() models.PaymentMethod {
	if s.Gateway != nil && s.Gateway.Provider() == gateway.ProviderStripe {
		return models.PaymentMethodStripe
	}
	return models.PaymentMethodRazorpay
}

// invoiceTax sums the tax lines of an invoice.
func invoiceTax(invoice *models.Invoice) float64 {
	tax := decimal.Zero
	for _, l := range invoice.TaxBreakdown {
		tax = tax.Add(decimal.NewFromFloat(l.TaxAmount))
	}
	return money(tax)
}

func splitNote(v string) []string {
	return lo.Compact(lo.Map(strings.Split(v, ","), func(s string, _ int) string {
		return strings.TrimSpace(s)
	}))
}
