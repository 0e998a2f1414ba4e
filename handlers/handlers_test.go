package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	ierr "insurepay/errors"
	"insurepay/handlers"
	"insurepay/models"
	"insurepay/routes"
	"insurepay/services/auth"
	"insurepay/services/billing"
	"insurepay/services/customer"
	"insurepay/services/gateway"
	"insurepay/services/insurer"
	"insurepay/testutil"
	"insurepay/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

const (
	adminEmail = "admin@insurepay.test"
	password   = "correct-horse"
)

type HandlerSuite struct {
	suite.Suite

	router    *gin.Engine
	customers *testutil.InMemoryCustomerStore
	invoices  *testutil.InMemoryInvoiceStore
	payments  *testutil.InMemoryPaymentStore
	gw        *testutil.FakeGateway
	notifier  *testutil.RecordingNotifier

	customerSvc customer.CustomerService
	insurerSvc  insurer.InsurerService
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.Require().NoError(utils.RegisterValidators())

	logger := zap.NewNop()
	s.customers = testutil.NewInMemoryCustomerStore()
	insurers := testutil.NewInMemoryInsurerStore()
	policies := testutil.NewInMemoryPolicyStore()
	s.invoices = testutil.NewInMemoryInvoiceStore()
	s.payments = testutil.NewInMemoryPaymentStore()
	s.gw = testutil.NewFakeGateway()
	s.notifier = testutil.NewRecordingNotifier()

	adminHash, err := auth.HashPassword(password)
	s.Require().NoError(err)

	authSvc := auth.NewDefaultAuthService(s.customers, insurers, testutil.NewInMemoryKV(), testutil.NewInMemoryKV(),
		s.notifier, auth.AdminAccount{Email: adminEmail, PasswordHash: adminHash}, logger)
	s.customerSvc = customer.NewDefaultCustomerService(s.customers, policies, logger)
	s.insurerSvc = insurer.NewDefaultInsurerService(insurers, policies, s.customers, logger)
	billingSvc := billing.NewDefaultBillingService(s.customers, policies, s.invoices, s.payments, nil,
		s.gw, s.notifier, logger, billing.Options{})

	s.router = gin.New()
	routes.RegisterRoutes(s.router, handlers.NewHandlerBundle(handlers.Services{
		Auth:         authSvc,
		Customers:    s.customerSvc,
		Insurers:     s.insurerSvc,
		Billing:      billingSvc,
		Notification: s.notifier,
		Gateway:      s.gw,
	}))
}

func (s *HandlerSuite) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlerSuite) decode(w *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func (s *HandlerSuite) login(email string) string {
	w := s.do(http.MethodPost, "/api/auth/login", "", models.LoginRequest{Email: email, Password: password})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var resp models.LoginResponse
	s.decode(w, &resp)
	return resp.Token
}

func (s *HandlerSuite) registerCustomer(name, email string) *models.Customer {
	w := s.do(http.MethodPost, "/api/customers/register", "", models.CustomerRegistration{
		Name: name, Email: email, Phone: "+91 98765 43210", Password: password,
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var c models.Customer
	s.decode(w, &c)
	return &c
}

// seedInsurer registers an insurer with one health policy taxed at 18%.
func (s *HandlerSuite) seedInsurer() (*models.Insurer, *models.Policy) {
	ctx := context.Background()
	ins, err := s.insurerSvc.Register(ctx, models.InsurerRegistration{Name: "Acme Life", Email: "ops@acme.test", Password: password})
	s.Require().NoError(err)
	policy, err := s.insurerSvc.CreatePolicy(ctx, ins.ID, models.CreatePolicyRequest{
		Name: "Family Health", Type: "Health", CoverageAmount: 500000, MonthlyPremium: 100, DurationMonths: 12,
	})
	s.Require().NoError(err)
	_, err = s.insurerSvc.SetTaxRate(ctx, models.SetTaxRateRequest{PolicyType: "health", GSTRate: 0.18})
	s.Require().NoError(err)
	return ins, policy
}

func (s *HandlerSuite) TestHealthReportsUnavailableBeforeFirstProbe() {
	w := s.do(http.MethodGet, "/health", "", nil)
	s.Equal(http.StatusServiceUnavailable, w.Code)
}

func (s *HandlerSuite) TestProtectedRouteRequiresToken() {
	w := s.do(http.MethodGet, "/api/customers", "", nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/api/customers", "not-a-jwt", nil)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *HandlerSuite) TestLoginRejectsBadPassword() {
	s.registerCustomer("Asha Rao", "asha@example.com")
	w := s.do(http.MethodPost, "/api/auth/login", "", models.LoginRequest{Email: "asha@example.com", Password: "wrong-password"})
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *HandlerSuite) TestLogoutRevokesToken() {
	s.registerCustomer("Asha Rao", "asha@example.com")
	token := s.login("asha@example.com")

	w := s.do(http.MethodPost, "/api/auth/logout", token, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/policies", token, nil)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *HandlerSuite) TestCustomerCanOnlyReadOwnRecord() {
	asha := s.registerCustomer("Asha Rao", "asha@example.com")
	ravi := s.registerCustomer("Ravi Iyer", "ravi@example.com")
	token := s.login("asha@example.com")

	w := s.do(http.MethodGet, "/api/customers/"+asha.ID, token, nil)
	s.Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/customers/"+ravi.ID, token, nil)
	s.Equal(http.StatusForbidden, w.Code)

	w = s.do(http.MethodGet, "/api/customers", token, nil)
	s.Equal(http.StatusForbidden, w.Code)
}

func (s *HandlerSuite) TestAdminSearchesCustomersByName() {
	s.registerCustomer("Asha Rao", "asha@example.com")
	s.registerCustomer("Ravi Iyer", "ravi@example.com")
	token := s.login(adminEmail)

	w := s.do(http.MethodGet, "/api/customers?name=ash", token, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var found []models.Customer
	s.decode(w, &found)
	s.Require().Len(found, 1)
	s.Equal("Asha Rao", found[0].Name)
}

func (s *HandlerSuite) TestInvoiceLifecycleOverHTTP() {
	ins, policy := s.seedInsurer()
	asha := s.registerCustomer("Asha Rao", "asha@example.com")
	s.registerCustomer("Ravi Iyer", "ravi@example.com")
	insurerToken := s.login("ops@acme.test")
	ashaToken := s.login("asha@example.com")
	raviToken := s.login("ravi@example.com")

	w := s.do(http.MethodPost, "/api/billing/invoices", insurerToken, models.CreateInvoiceRequest{
		CustomerID: asha.ID, PolicyIDs: []string{policy.ID}, Months: 3,
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var invoice models.Invoice
	s.decode(w, &invoice)
	s.Equal(354.0, invoice.Amount)
	s.Equal(ins.ID, invoice.InsurerID)
	s.Equal(models.InvoiceStatusUnpaid, invoice.Status)

	w = s.do(http.MethodGet, "/api/billing/invoices/"+invoice.ID, ashaToken, nil)
	s.Equal(http.StatusOK, w.Code)
	w = s.do(http.MethodGet, "/api/billing/invoices/"+invoice.ID, raviToken, nil)
	s.Equal(http.StatusForbidden, w.Code)

	w = s.do(http.MethodGet, "/api/customers/"+asha.ID+"/invoices?status=unpaid,failed", ashaToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var unpaid []models.Invoice
	s.decode(w, &unpaid)
	s.Len(unpaid, 1)

	w = s.do(http.MethodGet, "/api/customers/"+asha.ID+"/invoices?status=bogus", ashaToken, nil)
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/billing/payments", s.login(adminEmail), models.ProcessPaymentRequest{
		OrderID: invoice.GatewayOrderID, PaymentID: "pay_1", Status: "paid",
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var payment models.Payment
	s.decode(w, &payment)
	s.Equal(models.PaymentStatusPaid, payment.Status)
	s.Equal(354.0, payment.Amount)

	stored, err := s.invoices.GetByID(context.Background(), invoice.ID)
	s.Require().NoError(err)
	s.Equal(models.InvoiceStatusPaid, stored.Status)
}

func (s *HandlerSuite) TestInsurerCannotInvoiceForAnotherInsurer() {
	_, policy := s.seedInsurer()
	asha := s.registerCustomer("Asha Rao", "asha@example.com")
	token := s.login("ops@acme.test")

	w := s.do(http.MethodPost, "/api/billing/invoices", token, models.CreateInvoiceRequest{
		CustomerID: asha.ID, PolicyIDs: []string{policy.ID}, Months: 1, InsurerID: "ins_other",
	})
	s.Equal(http.StatusForbidden, w.Code)
}

func (s *HandlerSuite) TestCreateInvoiceValidatesBody() {
	s.seedInsurer()
	token := s.login("ops@acme.test")

	w := s.do(http.MethodPost, "/api/billing/invoices", token, map[string]any{"customerId": "c", "policyIds": []string{}, "months": 0})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerSuite) TestProcessPaymentRejectsUnknownStatus() {
	w := s.do(http.MethodPost, "/api/billing/payments", s.login(adminEmail), models.ProcessPaymentRequest{OrderID: "order_1", Status: "refunded"})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerSuite) TestCustomerCannotConfirmPayments() {
	_, policy := s.seedInsurer()
	asha := s.registerCustomer("Asha Rao", "asha@example.com")
	s.registerCustomer("Ravi Iyer", "ravi@example.com")
	raviToken := s.login("ravi@example.com")

	w := s.do(http.MethodPost, "/api/billing/invoices", s.login("ops@acme.test"), models.CreateInvoiceRequest{
		CustomerID: asha.ID, PolicyIDs: []string{policy.ID}, Months: 1,
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var invoice models.Invoice
	s.decode(w, &invoice)

	w = s.do(http.MethodPost, "/api/billing/payments", raviToken, map[string]any{
		"orderId": invoice.GatewayOrderID, "paymentId": "pay_forged", "status": "paid",
	})
	s.Equal(http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/api/billing/payments", raviToken, map[string]any{
		"subscriptionId": "sub_fake", "paymentId": "pay_forged_sub", "status": "paid",
		"customerId": asha.ID, "policyIds": []string{policy.ID},
	})
	s.Equal(http.StatusForbidden, w.Code)

	stored, err := s.invoices.GetByID(context.Background(), invoice.ID)
	s.Require().NoError(err)
	s.Equal(models.InvoiceStatusUnpaid, stored.Status)
	s.Equal(0, s.payments.Count())
}

func (s *HandlerSuite) TestManualSubscriptionConfirmationIgnoresBodyCustomer() {
	_, policy := s.seedInsurer()
	asha := s.registerCustomer("Asha Rao", "asha@example.com")

	// Customer and policy ids in the body are not trusted, so the unknown
	// subscription has to be resolved at the gateway and fails there.
	w := s.do(http.MethodPost, "/api/billing/payments", s.login(adminEmail), map[string]any{
		"subscriptionId": "sub_fake", "paymentId": "pay_sub", "status": "paid",
		"customerId": asha.ID, "policyIds": []string{policy.ID},
	})
	s.Equal(http.StatusBadGateway, w.Code, w.Body.String())

	stored, err := s.customers.GetByID(context.Background(), asha.ID)
	s.Require().NoError(err)
	s.Nil(stored.History(policy.ID))
	s.Equal(0, s.payments.Count())
}

func (s *HandlerSuite) TestWebhookCapturesPayment() {
	_, policy := s.seedInsurer()
	asha := s.registerCustomer("Asha Rao", "asha@example.com")
	token := s.login("ops@acme.test")

	w := s.do(http.MethodPost, "/api/billing/invoices", token, models.CreateInvoiceRequest{
		CustomerID: asha.ID, PolicyIDs: []string{policy.ID}, Months: 1,
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var invoice models.Invoice
	s.decode(w, &invoice)

	s.gw.Event = &gateway.WebhookEvent{
		ID:        "evt_1",
		Provider:  gateway.ProviderRazorpay,
		Type:      gateway.EventPaymentCaptured,
		RawType:   "payment.captured",
		PaymentID: "pay_hook",
		Notes:     map[string]string{gateway.NoteOrderID: invoice.GatewayOrderID},
	}

	w = s.do(http.MethodPost, "/api/webhooks/razorpay", "", map[string]string{"event": "payment.captured"})
	s.Require().Equal(http.StatusOK, w.Code)
	var resp map[string]string
	s.decode(w, &resp)
	s.Equal("processed", resp["status"])

	// Redelivery is acknowledged without a second payment row.
	w = s.do(http.MethodPost, "/api/webhooks/razorpay", "", map[string]string{"event": "payment.captured"})
	s.Require().Equal(http.StatusOK, w.Code)
	payments, err := s.payments.ListByCustomer(context.Background(), asha.ID)
	s.Require().NoError(err)
	s.Len(payments, 1)
}

func (s *HandlerSuite) TestWebhookTransientFailureAsksForRedelivery() {
	_, policy := s.seedInsurer()
	asha := s.registerCustomer("Asha Rao", "asha@example.com")

	w := s.do(http.MethodPost, "/api/billing/invoices", s.login("ops@acme.test"), models.CreateInvoiceRequest{
		CustomerID: asha.ID, PolicyIDs: []string{policy.ID}, Months: 1,
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var invoice models.Invoice
	s.decode(w, &invoice)

	s.gw.Event = &gateway.WebhookEvent{
		ID:        "evt_db",
		Provider:  gateway.ProviderRazorpay,
		Type:      gateway.EventPaymentCaptured,
		RawType:   "payment.captured",
		PaymentID: "pay_db",
		Notes:     map[string]string{gateway.NoteOrderID: invoice.GatewayOrderID},
	}
	s.payments.CreateErr = ierr.NewError("connection reset").Mark(ierr.ErrDatabase)

	w = s.do(http.MethodPost, "/api/webhooks/razorpay", "", map[string]string{"event": "payment.captured"})
	s.Equal(http.StatusInternalServerError, w.Code, w.Body.String())
	stored, err := s.invoices.GetByID(context.Background(), invoice.ID)
	s.Require().NoError(err)
	s.Equal(models.InvoiceStatusUnpaid, stored.Status)

	// The redelivery after recovery is recorded.
	s.payments.CreateErr = nil
	w = s.do(http.MethodPost, "/api/webhooks/razorpay", "", map[string]string{"event": "payment.captured"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	stored, err = s.invoices.GetByID(context.Background(), invoice.ID)
	s.Require().NoError(err)
	s.Equal(models.InvoiceStatusPaid, stored.Status)
}

func (s *HandlerSuite) TestWebhookUnknownOrderIsAcknowledged() {
	s.gw.Event = &gateway.WebhookEvent{
		ID:        "evt_missing",
		Provider:  gateway.ProviderRazorpay,
		Type:      gateway.EventPaymentCaptured,
		RawType:   "payment.captured",
		PaymentID: "pay_missing",
		OrderID:   "order_missing",
	}
	w := s.do(http.MethodPost, "/api/webhooks/razorpay", "", map[string]string{"event": "payment.captured"})
	s.Require().Equal(http.StatusOK, w.Code)
	var resp map[string]string
	s.decode(w, &resp)
	s.Equal("failed", resp["status"])
}

func (s *HandlerSuite) TestWebhookRejectsBadSignature() {
	s.gw.WebhookErr = gateway.ErrInvalidSignature
	w := s.do(http.MethodPost, "/api/webhooks/razorpay", "", map[string]string{"event": "payment.captured"})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerSuite) TestWebhookUnknownProvider() {
	w := s.do(http.MethodPost, "/api/webhooks/paypal", "", map[string]string{})
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *HandlerSuite) TestWebhookIgnoresUnhandledEvents() {
	w := s.do(http.MethodPost, "/api/webhooks/razorpay", "", map[string]string{"event": "refund.created"})
	s.Require().Equal(http.StatusOK, w.Code)
	var resp map[string]string
	s.decode(w, &resp)
	s.Equal("ignored", resp["status"])
}

func (s *HandlerSuite) TestEnableAutoPayForPolicy() {
	_, policy := s.seedInsurer()
	asha := s.registerCustomer("Asha Rao", "asha@example.com")
	ravi := s.registerCustomer("Ravi Iyer", "ravi@example.com")
	token := s.login("asha@example.com")

	w := s.do(http.MethodPost, "/api/billing/autopay/enable", token, models.EnableAutoPayRequest{
		CustomerID: ravi.ID, PolicyID: policy.ID, Months: 12, Amount: 118,
	})
	s.Equal(http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/api/billing/autopay/enable", token, models.EnableAutoPayRequest{
		CustomerID: asha.ID, Months: 12, Amount: 118,
	})
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/billing/autopay/enable", token, models.EnableAutoPayRequest{
		CustomerID: asha.ID, PolicyID: policy.ID, Months: 12, Amount: 118,
	})
	s.Equal(http.StatusForbidden, w.Code, "policy not yet held")

	w = s.do(http.MethodPost, "/api/customers/"+asha.ID+"/policies", token, map[string]any{"policyIds": []string{policy.ID}})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/billing/autopay/enable", token, models.EnableAutoPayRequest{
		CustomerID: asha.ID, PolicyID: policy.ID, Months: 12, Amount: 118,
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var resp map[string]string
	s.decode(w, &resp)
	s.NotEmpty(resp["subscriptionId"])

	w = s.do(http.MethodGet, "/api/customers/"+asha.ID+"/autopay", token, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var status models.AutoPayStatus
	s.decode(w, &status)
	s.True(status.AutoPayEnabled)

	w = s.do(http.MethodPost, "/api/billing/autopay/disable", token, models.DisableAutoPayRequest{
		CustomerID: asha.ID, PolicyID: policy.ID,
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Contains(s.gw.Cancelled, resp["subscriptionId"])
}

func (s *HandlerSuite) TestSendEmailIsAdminOnly() {
	s.registerCustomer("Asha Rao", "asha@example.com")
	body := models.SendEmailRequest{To: "someone@example.com", Subject: "Hello", Text: "Hi"}

	w := s.do(http.MethodPost, "/api/notifications/email", s.login("asha@example.com"), body)
	s.Equal(http.StatusForbidden, w.Code)

	adminToken := s.login(adminEmail)
	w = s.do(http.MethodPost, "/api/notifications/email", adminToken, body)
	s.Require().Equal(http.StatusAccepted, w.Code)
	s.Len(s.notifier.Emails, 1)

	w = s.do(http.MethodPost, "/api/notifications/email", adminToken, models.SendEmailRequest{To: "someone@example.com", Subject: "Empty"})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerSuite) TestOTPSignIn() {
	s.registerCustomer("Asha Rao", "asha@example.com")

	w := s.do(http.MethodPost, "/api/auth/otp/request", "", models.OTPRequest{Email: "asha@example.com"})
	s.Require().Equal(http.StatusAccepted, w.Code)
	code := s.notifier.OTPs["asha@example.com"]
	s.Require().Len(code, 6)

	w = s.do(http.MethodPost, "/api/auth/otp/verify", "", models.OTPVerifyRequest{Email: "asha@example.com", Code: code})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var resp models.LoginResponse
	s.decode(w, &resp)
	s.Equal(models.RoleCustomer, resp.Role)
	s.NotEmpty(resp.Token)
}
