package billing

import (
	"context"

	"insurepay/models"
	"insurepay/services/gateway"

	"go.uber.org/zap"
)

// HandleWebhook routes a verified gateway event to the payment recorder.
// Events that carry nothing to record return a nil payment.
func (s *DefaultBillingService) HandleWebhook(ctx context.Context, event *gateway.WebhookEvent) (*models.Payment, error) {
	log := s.Logger.With(
		zap.String("provider", event.Provider),
		zap.String("event", event.RawType),
		zap.String("eventId", event.ID))

	switch event.Type {
	case gateway.EventSubscriptionCharged:
		return s.ProcessPayment(ctx, models.ProcessPaymentRequest{
			PaymentID:      event.PaymentID,
			Status:         string(models.InvoiceStatusPaid),
			SubscriptionID: event.SubscriptionID,
			CustomerID:     event.Notes[gateway.NoteCustomerID],
			PolicyIDs:      splitNote(event.Notes[gateway.NotePolicyIDs]),
			PolicyNames:    splitNote(event.Notes[gateway.NotePolicyNames]),
		})

	case gateway.EventPaymentCaptured, gateway.EventPaymentFailed:
		orderID := event.Notes[gateway.NoteOrderID]
		if orderID == "" {
			orderID = event.OrderID
		}
		if orderID == "" || (event.SubscriptionID != "" && event.Notes[gateway.NoteOrderID] == "") {
			// Recurring charges are recorded from subscription.charged.
			log.Debug("Payment event not tied to an invoice, ignoring")
			return nil, nil
		}
		status := models.InvoiceStatusPaid
		if event.Type == gateway.EventPaymentFailed {
			status = models.InvoiceStatusFailed
		}
		return s.ProcessPayment(ctx, models.ProcessPaymentRequest{
			OrderID:   orderID,
			PaymentID: event.PaymentID,
			Status:    string(status),
		})

	case gateway.EventSubscriptionCancelled:
		return nil, s.markSubscriptionCancelled(ctx, event)
	}

	log.Debug("Unhandled webhook event")
	return nil, nil
}

// markSubscriptionCancelled deactivates the history entries that still point
// at a subscription the gateway has cancelled.
func (s *DefaultBillingService) markSubscriptionCancelled(ctx context.Context, event *gateway.WebhookEvent) error {
	customerID := event.Notes[gateway.NoteCustomerID]
	if customerID == "" || event.SubscriptionID == "" {
		return nil
	}
	customer, err := s.Customers.GetByID(ctx, customerID)
	if err != nil {
		return err
	}

	changed := false
	for i := range customer.PaymentHistory {
		h := &customer.PaymentHistory[i]
		if h.SubscriptionID == event.SubscriptionID {
			h.Status = models.HistoryStatusAutopayInactive
			h.SubscriptionID = ""
			changed = true
		}
	}
	if !changed {
		return nil
	}
	customer.UpdatedAt = s.now()
	if err := s.Customers.Save(ctx, customer); err != nil {
		return err
	}
	s.Logger.Info("Subscription cancelled at gateway",
		zap.String("customerId", customerID), zap.String("subscriptionId", event.SubscriptionID))
	return nil
}
