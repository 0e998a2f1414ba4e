package routes

import (
	"time"

	"insurepay/handlers"
	"insurepay/middleware"
	"insurepay/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var (
	admin    = models.RoleAdmin
	insurer  = models.RoleInsurer
	customer = models.RoleCustomer
)

// RegisterAuthRoutes registers login, logout and OTP endpoints.
func RegisterAuthRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/auth")
	{
		api.POST("/login", hb.LoginHandler)
		api.POST("/otp/request", hb.RequestOTP)
		api.POST("/otp/verify", hb.VerifyOTP)

		api.POST("/logout", hb.Authenticate, hb.LogoutHandler)
	}
}

// RegisterCustomerRoutes registers customer accounts and the customer-scoped
// billing views.
func RegisterCustomerRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/customers")
	{
		api.POST("/register", hb.RegisterCustomerHandler)

		// Protected routes (Require Authentication)
		protected := api.Group("")
		protected.Use(hb.Authenticate)
		protected.GET("", middleware.RequireRole(admin, insurer), hb.ListCustomersHandler)

		self := protected.Group("/:id")
		self.Use(middleware.RequireSelfOrRole(customer, "id", admin, insurer))
		self.GET("", hb.GetCustomerHandler)
		self.GET("/history", hb.PaymentHistoryHandler)
		self.GET("/invoices", hb.ListCustomerInvoicesHandler)
		self.GET("/payments", hb.ListCustomerPaymentsHandler)
		self.GET("/autopay", hb.AutoPayStatusHandler)

		owner := protected.Group("/:id")
		owner.Use(middleware.RequireSelfOrRole(customer, "id", admin))
		owner.POST("/policies", hb.AddPoliciesHandler)
	}
}

// RegisterInsurerRoutes registers insurer accounts, policies and tax rates.
func RegisterInsurerRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/insurers")
	{
		api.Use(hb.Authenticate)
		api.POST("/register", middleware.RequireRole(admin), hb.RegisterInsurerHandler)
		api.GET("", middleware.RequireRole(admin), hb.ListInsurersHandler)

		api.GET("/:id", hb.GetInsurerHandler)
		api.GET("/:id/policies", hb.ListPoliciesHandler)

		owner := api.Group("/:id")
		owner.Use(middleware.RequireSelfOrRole(insurer, "id", admin))
		owner.POST("/policies", hb.CreatePolicyHandler)
		owner.GET("/customers", hb.InsurerCustomers)
		owner.GET("/invoices", hb.ListInsurerInvoicesHandler)
	}

	policies := r.Group("/api/policies")
	{
		policies.Use(hb.Authenticate)
		policies.GET("", hb.AvailablePoliciesHandler)
	}

	rates := r.Group("/api/tax-rates")
	{
		rates.Use(hb.Authenticate)
		rates.GET("", hb.ListTaxRatesHandler)
		rates.PUT("", middleware.RequireRole(admin, insurer), hb.SetTaxRateHandler)
	}
}

// RegisterBillingRoutes registers invoice, payment and autopay endpoints.
func RegisterBillingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/billing")
	{
		api.Use(hb.Authenticate)
		api.POST("/invoices", middleware.RequireRole(admin, insurer), hb.CreateInvoiceHandler)
		api.GET("/invoices/:id", hb.GetInvoiceHandler)
		api.POST("/invoices/:id/cash", middleware.RequireRole(admin, insurer), hb.RecordCashPaymentHandler)

		api.POST("/payments", middleware.RequireRole(admin), hb.ProcessPaymentHandler)

		api.POST("/autopay/enable", middleware.RequireRole(admin, customer), hb.EnableAutoPayHandler)
		api.POST("/autopay/disable", middleware.RequireRole(admin, customer), hb.DisableAutoPayHandler)
	}
}

// RegisterWebhookRoutes registers gateway callbacks. They are authenticated
// by signature, not by bearer token.
func RegisterWebhookRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.POST("/api/webhooks/:provider", hb.WebhookHandler)
}

// RegisterNotificationRoutes sets up endpoints for admin email delivery.
func RegisterNotificationRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/notifications")
	{
		api.Use(hb.Authenticate, middleware.RequireRole(admin))
		api.POST("/email", hb.SendEmailHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.HealthHandler)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	RegisterAuthRoutes(r, hb)
	RegisterCustomerRoutes(r, hb)
	RegisterInsurerRoutes(r, hb)
	RegisterBillingRoutes(r, hb)
	RegisterWebhookRoutes(r, hb)
	RegisterNotificationRoutes(r, hb)
	RegisterHealthRoute(r, hb)
}
