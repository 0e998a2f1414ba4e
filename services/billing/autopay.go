package billing

import (
	"context"
	"strconv"
	"strings"

	ierr "insurepay/errors"
	"insurepay/models"
	"insurepay/services/gateway"
	"insurepay/services/notification"

	"go.uber.org/zap"
)

// EnableAutoPay creates a plan subscription for an existing invoice.
func (s *DefaultBillingService) EnableAutoPay(ctx context.Context, customerID, invoiceID string, months int, amount float64) (string, error) {
	if months < 1 {
		return "", validationError("months must be at least 1")
	}
	customer, err := s.Customers.GetByID(ctx, customerID)
	if err != nil {
		return "", err
	}
	invoice, err := s.GetInvoice(ctx, invoiceID)
	if err != nil {
		return "", err
	}
	if invoice.CustomerID != customer.ID {
		return "", ierr.NewErrorf("invoice %s does not belong to customer %s", invoice.ID, customer.ID).
			WithHint("Invoice does not belong to this customer").
			Mark(ierr.ErrPermissionDenied)
	}

	sub, err := s.Gateway.CreateSubscription(ctx, gateway.SubscriptionRequest{
		TotalCount: months,
		Notes: map[string]string{
			gateway.NoteCustomerID: customer.ID,
			gateway.NoteInvoiceID:  invoice.ID,
			gateway.NotePolicyIDs:  strings.Join(invoice.PolicyIDs, ","),
			gateway.NoteAmount:     formatAmount(amount),
		},
		NotifyEmail: customer.Email,
	})
	if err != nil {
		s.Logger.Error("Failed to create subscription for invoice", zap.String("invoiceId", invoice.ID), zap.Error(err))
		return "", err
	}

	now := s.now()
	customer.AutoPayEnabled = true
	customer.UpdatedAt = now
	invoice.SubscriptionID = sub.ID
	invoice.UpdatedAt = now

	err = s.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.Invoices.Save(ctx, invoice); err != nil {
			return err
		}
		return s.Customers.Save(ctx, customer)
	})
	if err != nil {
		return "", err
	}

	s.Logger.Info("Autopay enabled for invoice",
		zap.String("invoiceId", invoice.ID), zap.String("subscriptionId", sub.ID))
	return sub.ID, nil
}

// EnableAutoPayPolicy subscribes one policy to recurring billing under the
// customer's gateway account, creating that account on first use.
func (s *DefaultBillingService) EnableAutoPayPolicy(ctx context.Context, customerID, policyID string, months int, amount float64) (string, error) {
	if months < 1 {
		return "", validationError("months must be at least 1")
	}
	if strings.TrimSpace(policyID) == "" {
		return "", validationError("policy id is required")
	}
	customer, err := s.Customers.GetByID(ctx, customerID)
	if err != nil {
		return "", err
	}
	policy, err := s.Policies.GetByID(ctx, policyID)
	if err != nil {
		return "", err
	}
	if !customer.OwnsPolicy(policy.ID) {
		return "", ierr.NewErrorf("customer %s does not hold policy %s", customer.ID, policy.ID).
			WithHint("Policy does not belong to this customer").
			Mark(ierr.ErrPermissionDenied)
	}

	gatewayCustomerID, err := s.ensureGatewayCustomer(ctx, customer)
	if err != nil {
		return "", err
	}

	sub, err := s.Gateway.CreateSubscription(ctx, gateway.SubscriptionRequest{
		CustomerID: gatewayCustomerID,
		TotalCount: months,
		Notes: map[string]string{
			gateway.NoteCustomerID:  customer.ID,
			gateway.NotePolicyID:    policy.ID,
			gateway.NotePolicyIDs:   policy.ID,
			gateway.NotePolicyNames: policy.Name,
			gateway.NoteAmount:      formatAmount(amount),
		},
		NotifyEmail: customer.Email,
	})
	if err != nil {
		s.Logger.Error("Failed to create subscription for policy",
			zap.String("customerId", customer.ID), zap.String("policyId", policy.ID), zap.Error(err))
		return "", err
	}

	h := customer.UpsertHistory(policy.ID)
	h.Status = models.HistoryStatusPaidByAutopayActive
	h.SubscriptionID = sub.ID
	customer.AutoPayEnabled = true
	customer.UpdatedAt = s.now()
	if err := s.Customers.Save(ctx, customer); err != nil {
		return "", err
	}

	s.Logger.Info("Autopay enabled for policy",
		zap.String("customerId", customer.ID), zap.String("policyId", policy.ID), zap.String("subscriptionId", sub.ID))

	s.notifyAutoPay(ctx, customer, notification.AutoPayNotice{
		PolicyID:       policy.ID,
		SubscriptionID: sub.ID,
		ShortURL:       sub.ShortURL,
		Enabled:        true,
	})
	return sub.ID, nil
}

// ensureGatewayCustomer returns the customer's gateway id. When the gateway
// reports the customer already exists, the existing record is looked up by
// email or phone instead.
func (s *DefaultBillingService) ensureGatewayCustomer(ctx context.Context, customer *models.Customer) (string, error) {
	if customer.GatewayCustomerID != "" {
		return customer.GatewayCustomerID, nil
	}

	req := gateway.CustomerRequest{
		Name:  customer.Name,
		Email: customer.Email,
		Phone: customer.Phone,
		Notes: map[string]string{gateway.NoteCustomerID: customer.ID},
	}
	created, err := s.Gateway.CreateCustomer(ctx, req)
	if err != nil {
		if !gateway.IsCustomerExists(err) {
			return "", err
		}
		s.Logger.Info("Gateway customer already exists, searching", zap.String("customerId", customer.ID))
		found, findErr := gateway.FindCustomer(ctx, s.Gateway, req)
		if findErr != nil {
			return "", findErr
		}
		if found == nil {
			return "", ierr.WithError(err).
				WithMessage("gateway customer exists but could not be found").
				WithHint("Could not resolve the existing payment gateway customer").
				Mark(ierr.ErrGateway)
		}
		created = found
	}

	customer.GatewayCustomerID = created.ID
	customer.UpdatedAt = s.now()
	if err := s.Customers.Save(ctx, customer); err != nil {
		return "", err
	}
	return created.ID, nil
}

// DisableAutoPay cancels the resolved subscription if the gateway would still
// charge it and clears the customer's autopay flag. Nothing to cancel is not
// an error.
func (s *DefaultBillingService) DisableAutoPay(ctx context.Context, customerID, subscriptionID, policyID string) error {
	customer, err := s.Customers.GetByID(ctx, customerID)
	if err != nil {
		return err
	}

	subscriptionID = strings.TrimSpace(subscriptionID)
	if subscriptionID == "" && policyID != "" {
		if h := customer.History(policyID); h != nil {
			subscriptionID = h.SubscriptionID
		}
	}

	if subscriptionID != "" {
		sub, err := s.Gateway.FetchSubscription(ctx, subscriptionID)
		if err != nil {
			return err
		}
		if sub.Cancellable() {
			if _, err := s.Gateway.CancelSubscription(ctx, subscriptionID); err != nil {
				return err
			}
			s.Logger.Info("Subscription cancelled",
				zap.String("customerId", customer.ID), zap.String("subscriptionId", subscriptionID))
		} else {
			s.Logger.Debug("Subscription not cancellable, skipping",
				zap.String("subscriptionId", subscriptionID), zap.String("status", sub.Status))
		}
	}

	customer.AutoPayEnabled = false
	if policyID != "" {
		if h := customer.History(policyID); h != nil {
			h.Status = models.HistoryStatusAutopayInactive
			h.SubscriptionID = ""
		}
	}
	customer.UpdatedAt = s.now()
	if err := s.Customers.Save(ctx, customer); err != nil {
		return err
	}

	if policyID != "" {
		s.notifyAutoPay(ctx, customer, notification.AutoPayNotice{
			PolicyID:       policyID,
			SubscriptionID: subscriptionID,
			Enabled:        false,
		})
	}
	return nil
}

// AutoPayStatus reports autopay per policy from the customer's history.
func (s *DefaultBillingService) AutoPayStatus(ctx context.Context, customerID string) (*models.AutoPayStatus, error) {
	customer, err := s.Customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	active := make(map[string]bool)
	for _, id := range customer.AutoPayPolicies() {
		active[id] = true
	}

	status := &models.AutoPayStatus{
		CustomerID:     customer.ID,
		AutoPayEnabled: len(active) > 0,
		Policies:       make([]models.PolicyAutoPay, 0, len(customer.PaymentHistory)),
	}
	for _, h := range customer.PaymentHistory {
		status.Policies = append(status.Policies, models.PolicyAutoPay{
			PolicyID:       h.PolicyID,
			Active:         active[h.PolicyID],
			SubscriptionID: h.SubscriptionID,
			Status:         h.Status,
		})
	}
	return status, nil
}

func (s *DefaultBillingService) notifyAutoPay(ctx context.Context, customer *models.Customer, notice notification.AutoPayNotice) {
	if s.Notifier == nil {
		return
	}
	notice.To = customer.Email
	notice.CustomerName = customer.Name
	if err := s.Notifier.NotifyAutoPay(ctx, notice); err != nil {
		s.Logger.Warn("Autopay notification failed", zap.String("customerId", customer.ID), zap.Error(err))
	}
}

func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}
