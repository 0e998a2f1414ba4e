package billing

import (
	"insurepay/models"
	"insurepay/services/gateway"

	ierr "insurepay/errors"
)

func (s *BillingServiceSuite) TestEnableAutoPayPolicyCreatesGatewayCustomer() {
	subID, err := s.service.EnableAutoPayPolicy(s.ctx, "cust_1", "pol_health", 12, 118)
	s.Require().NoError(err)
	s.NotEmpty(subID)

	c := s.customer()
	s.True(c.AutoPayEnabled)
	s.NotEmpty(c.GatewayCustomerID)
	h := c.History("pol_health")
	s.Require().NotNil(h)
	s.Equal(models.HistoryStatusPaidByAutopayActive, h.Status)
	s.Equal(subID, h.SubscriptionID)

	sub := s.gw.Subscriptions[subID]
	s.Equal(c.GatewayCustomerID, sub.CustomerID)
	s.Equal("cust_1", sub.Notes[gateway.NoteCustomerID])
	s.Equal("pol_health", sub.Notes[gateway.NotePolicyID])
	s.Equal("118.00", sub.Notes[gateway.NoteAmount])

	s.Require().Len(s.notifier.AutoPays, 1)
	s.True(s.notifier.AutoPays[0].Enabled)
	s.Equal(sub.ShortURL, s.notifier.AutoPays[0].ShortURL)

	// The gateway customer is reused on the next enrolment.
	_, err = s.service.EnableAutoPayPolicy(s.ctx, "cust_1", "pol_motor", 6, 55)
	s.Require().NoError(err)
	s.Len(s.gw.Customers, 1)
}

func (s *BillingServiceSuite) TestEnableAutoPayPolicyFindsExistingGatewayCustomer() {
	for i := 0; i < 150; i++ {
		s.gw.Customers = append(s.gw.Customers, gateway.Customer{ID: "cust_other", Email: "other@example.com", Phone: "1111111111"})
	}
	s.gw.Customers = append(s.gw.Customers, gateway.Customer{ID: "cust_rzp", Phone: "9876543210"})
	s.gw.CustomerExists = true

	_, err := s.service.EnableAutoPayPolicy(s.ctx, "cust_1", "pol_health", 3, 100)
	s.Require().NoError(err)
	s.Equal("cust_rzp", s.customer().GatewayCustomerID)
	s.Equal(2, s.gw.ListCalls)
}

func (s *BillingServiceSuite) TestEnableAutoPayPolicyExistingCustomerNotFound() {
	s.gw.CustomerExists = true

	_, err := s.service.EnableAutoPayPolicy(s.ctx, "cust_1", "pol_health", 3, 100)
	s.Require().Error(err)
	s.True(ierr.IsGateway(err))
	s.Empty(s.customer().GatewayCustomerID)
}

func (s *BillingServiceSuite) TestEnableAutoPayPolicyValidation() {
	_, err := s.service.EnableAutoPayPolicy(s.ctx, "cust_1", "pol_health", 0, 100)
	s.True(ierr.IsValidation(err))

	_, err = s.service.EnableAutoPayPolicy(s.ctx, "cust_1", "pol_missing", 1, 100)
	s.True(ierr.IsNotFound(err))
}

func (s *BillingServiceSuite) TestEnableAutoPayPolicyRequiresOwnership() {
	s.Require().NoError(s.policies.Create(s.ctx, &models.Policy{
		ID: "pol_life", Name: "Term Life", InsurerID: "ins_1", Type: "life", MonthlyPremium: 80, Active: true,
	}))

	_, err := s.service.EnableAutoPayPolicy(s.ctx, "cust_1", "pol_life", 12, 960)
	s.Require().Error(err)
	s.True(ierr.IsPermissionDenied(err))
	s.Empty(s.gw.Subscriptions)
	s.Empty(s.gw.Customers)
	s.Nil(s.customer().History("pol_life"))
}

func (s *BillingServiceSuite) TestEnableAutoPayForInvoice() {
	inv := s.createInvoice(1, "pol_health", "pol_motor")

	subID, err := s.service.EnableAutoPay(s.ctx, "cust_1", inv.ID, 12, inv.Amount)
	s.Require().NoError(err)

	stored, _ := s.invoices.GetByID(s.ctx, inv.ID)
	s.Equal(subID, stored.SubscriptionID)
	s.True(s.customer().AutoPayEnabled)

	sub := s.gw.Subscriptions[subID]
	s.Equal(inv.ID, sub.Notes[gateway.NoteInvoiceID])
	s.Equal("pol_health,pol_motor", sub.Notes[gateway.NotePolicyIDs])

	s.Require().NoError(s.customers.Create(s.ctx, &models.Customer{ID: "cust_2", Email: "b@example.com"}))
	_, err = s.service.EnableAutoPay(s.ctx, "cust_2", inv.ID, 12, inv.Amount)
	s.True(ierr.IsPermissionDenied(err))
}

func (s *BillingServiceSuite) TestDisableAutoPayWithNothingToCancel() {
	c := s.customer()
	c.AutoPayEnabled = true
	s.Require().NoError(s.customers.Save(s.ctx, c))

	err := s.service.DisableAutoPay(s.ctx, "cust_1", "", "")
	s.Require().NoError(err)
	s.False(s.customer().AutoPayEnabled)
	s.Empty(s.gw.Cancelled)
	s.Empty(s.notifier.AutoPays)
}

func (s *BillingServiceSuite) TestDisableAutoPayByPolicy() {
	subID, err := s.service.EnableAutoPayPolicy(s.ctx, "cust_1", "pol_health", 12, 118)
	s.Require().NoError(err)
	s.gw.Subscriptions[subID].Status = gateway.SubscriptionActive

	s.Require().NoError(s.service.DisableAutoPay(s.ctx, "cust_1", "", "pol_health"))

	s.Equal([]string{subID}, s.gw.Cancelled)
	c := s.customer()
	s.False(c.AutoPayEnabled)
	h := c.History("pol_health")
	s.Equal(models.HistoryStatusAutopayInactive, h.Status)
	s.Empty(h.SubscriptionID)
	s.Require().Len(s.notifier.AutoPays, 2)
	s.False(s.notifier.AutoPays[1].Enabled)
}

func (s *BillingServiceSuite) TestDisableAutoPaySkipsCancelledSubscription() {
	s.gw.AddSubscription(gateway.Subscription{ID: "sub_done", Status: gateway.SubscriptionCancelled})

	s.Require().NoError(s.service.DisableAutoPay(s.ctx, "cust_1", "sub_done", ""))
	s.Empty(s.gw.Cancelled)
}

func (s *BillingServiceSuite) TestAutoPayStatus() {
	subID, err := s.service.EnableAutoPayPolicy(s.ctx, "cust_1", "pol_health", 12, 118)
	s.Require().NoError(err)
	s.createInvoice(1, "pol_motor")

	status, err := s.service.AutoPayStatus(s.ctx, "cust_1")
	s.Require().NoError(err)
	s.True(status.AutoPayEnabled)
	s.Require().Len(status.Policies, 2)

	byPolicy := map[string]models.PolicyAutoPay{}
	for _, p := range status.Policies {
		byPolicy[p.PolicyID] = p
	}
	s.True(byPolicy["pol_health"].Active)
	s.Equal(subID, byPolicy["pol_health"].SubscriptionID)
	s.False(byPolicy["pol_motor"].Active)

	s.Require().NoError(s.service.DisableAutoPay(s.ctx, "cust_1", "", "pol_health"))
	status, err = s.service.AutoPayStatus(s.ctx, "cust_1")
	s.Require().NoError(err)
	s.False(status.AutoPayEnabled)
}

func (s *BillingServiceSuite) TestSubscriptionCancelledWebhook() {
	subID, err := s.service.EnableAutoPayPolicy(s.ctx, "cust_1", "pol_health", 12, 118)
	s.Require().NoError(err)

	payment, err := s.service.HandleWebhook(s.ctx, &gateway.WebhookEvent{
		Type:           gateway.EventSubscriptionCancelled,
		SubscriptionID: subID,
		Notes:          map[string]string{gateway.NoteCustomerID: "cust_1"},
	})
	s.Require().NoError(err)
	s.Nil(payment)
	h := s.customer().History("pol_health")
	s.Equal(models.HistoryStatusAutopayInactive, h.Status)
	s.Empty(h.SubscriptionID)
}
