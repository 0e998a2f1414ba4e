package handlers

import (
	"insurepay/middleware"
	"insurepay/services/auth"
	"insurepay/services/billing"
	"insurepay/services/customer"
	"insurepay/services/gateway"
	"insurepay/services/insurer"
	"insurepay/services/notification"

	"github.com/gin-gonic/gin"
)

// Services is everything the HTTP layer calls into.
type Services struct {
	Auth         auth.AuthService
	Customers    customer.CustomerService
	Insurers     insurer.InsurerService
	Billing      billing.BillingService
	Notification notification.Notifier
	Gateway      gateway.Gateway
}

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Authenticate guards every non-public route.
	Authenticate gin.HandlerFunc

	// Auth endpoints
	LoginHandler  gin.HandlerFunc
	LogoutHandler gin.HandlerFunc
	RequestOTP    gin.HandlerFunc
	VerifyOTP     gin.HandlerFunc

	// Customer endpoints
	RegisterCustomerHandler  gin.HandlerFunc
	GetCustomerHandler       gin.HandlerFunc
	ListCustomersHandler     gin.HandlerFunc
	AddPoliciesHandler       gin.HandlerFunc
	PaymentHistoryHandler    gin.HandlerFunc
	AvailablePoliciesHandler gin.HandlerFunc

	// Insurer endpoints
	RegisterInsurerHandler gin.HandlerFunc
	GetInsurerHandler      gin.HandlerFunc
	ListInsurersHandler    gin.HandlerFunc
	CreatePolicyHandler    gin.HandlerFunc
	ListPoliciesHandler    gin.HandlerFunc
	InsurerCustomers       gin.HandlerFunc
	SetTaxRateHandler      gin.HandlerFunc
	ListTaxRatesHandler    gin.HandlerFunc

	// Billing endpoints
	CreateInvoiceHandler        gin.HandlerFunc
	GetInvoiceHandler           gin.HandlerFunc
	ListCustomerInvoicesHandler gin.HandlerFunc
	ListInsurerInvoicesHandler  gin.HandlerFunc
	ProcessPaymentHandler       gin.HandlerFunc
	RecordCashPaymentHandler    gin.HandlerFunc
	ListCustomerPaymentsHandler gin.HandlerFunc
	EnableAutoPayHandler        gin.HandlerFunc
	DisableAutoPayHandler       gin.HandlerFunc
	AutoPayStatusHandler        gin.HandlerFunc

	WebhookHandler   gin.HandlerFunc
	SendEmailHandler gin.HandlerFunc
	HealthHandler    gin.HandlerFunc
}

func NewHandlerBundle(s Services) *HandlerBundle {
	authHandler := NewAuthHandler(s.Auth)
	customerHandler := NewCustomerHandler(s.Customers)
	insurerHandler := NewInsurerHandler(s.Insurers)
	billingHandler := NewBillingHandler(s.Billing)
	webhookHandler := NewWebhookHandler(s.Gateway, s.Billing)
	notificationHandler := NewNotificationHandler(s.Notification)

	return &HandlerBundle{
		Authenticate: middleware.JWTAuthMiddleware(s.Auth),

		LoginHandler:  authHandler.LoginHandler,
		LogoutHandler: authHandler.LogoutHandler,
		RequestOTP:    authHandler.RequestOTPHandler,
		VerifyOTP:     authHandler.VerifyOTPHandler,

		RegisterCustomerHandler:  customerHandler.RegisterCustomerHandler,
		GetCustomerHandler:       customerHandler.GetCustomerHandler,
		ListCustomersHandler:     customerHandler.ListCustomersHandler,
		AddPoliciesHandler:       customerHandler.AddPoliciesHandler,
		PaymentHistoryHandler:    customerHandler.PaymentHistoryHandler,
		AvailablePoliciesHandler: customerHandler.AvailablePoliciesHandler,

		RegisterInsurerHandler: insurerHandler.RegisterInsurerHandler,
		GetInsurerHandler:      insurerHandler.GetInsurerHandler,
		ListInsurersHandler:    insurerHandler.ListInsurersHandler,
		CreatePolicyHandler:    insurerHandler.CreatePolicyHandler,
		ListPoliciesHandler:    insurerHandler.ListPoliciesHandler,
		InsurerCustomers:       insurerHandler.ListCustomersHandler,
		SetTaxRateHandler:      insurerHandler.SetTaxRateHandler,
		ListTaxRatesHandler:    insurerHandler.ListTaxRatesHandler,

		CreateInvoiceHandler:        billingHandler.CreateInvoiceHandler,
		GetInvoiceHandler:           billingHandler.GetInvoiceHandler,
		ListCustomerInvoicesHandler: billingHandler.ListCustomerInvoicesHandler,
		ListInsurerInvoicesHandler:  billingHandler.ListInsurerInvoicesHandler,
		ProcessPaymentHandler:       billingHandler.ProcessPaymentHandler,
		RecordCashPaymentHandler:    billingHandler.RecordCashPaymentHandler,
		ListCustomerPaymentsHandler: billingHandler.ListCustomerPaymentsHandler,
		EnableAutoPayHandler:        billingHandler.EnableAutoPayHandler,
		DisableAutoPayHandler:       billingHandler.DisableAutoPayHandler,
		AutoPayStatusHandler:        billingHandler.AutoPayStatusHandler,

		WebhookHandler:   webhookHandler.HandleWebhook,
		SendEmailHandler: notificationHandler.SendEmailHandler,
		HealthHandler:    HealthHandler,
	}
}
