package handlers

import (
	"net/http"
	"strings"

	"insurepay/middleware"
	"insurepay/models"
	"insurepay/services/billing"
	"insurepay/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BillingHandler exposes invoices, payments and autopay.
type BillingHandler struct {
	BillingService billing.BillingService
}

func NewBillingHandler(bs billing.BillingService) *BillingHandler {
	return &BillingHandler{BillingService: bs}
}

// CreateInvoiceHandler raises an invoice. Insurers may only bill on their
// own behalf.
func (h *BillingHandler) CreateInvoiceHandler(c *gin.Context) {
	var req models.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}
	if p, ok := middleware.GetPrincipal(c); ok && p.Role == models.RoleInsurer {
		if req.InsurerID != "" && req.InsurerID != p.ID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Insurers can only invoice for themselves"})
			return
		}
		req.InsurerID = p.ID
	}

	invoice, err := h.BillingService.CreateInvoice(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err, "Failed to create invoice")
		return
	}
	getLogger(c).Info("Invoice created",
		zap.String("invoiceId", invoice.ID),
		zap.String("customerId", invoice.CustomerID),
		zap.Float64("amount", invoice.Amount))
	c.JSON(http.StatusCreated, invoice)
}

func (h *BillingHandler) GetInvoiceHandler(c *gin.Context) {
	invoice, err := h.BillingService.GetInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err, "Failed to fetch invoice")
		return
	}
	if !canAccessInvoice(c, invoice) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// ListCustomerInvoicesHandler accepts repeated or comma separated "status"
// query parameters.
func (h *BillingHandler) ListCustomerInvoicesHandler(c *gin.Context) {
	var statuses []models.InvoiceStatus
	for _, raw := range c.QueryArray("status") {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			status, ok := models.ParseInvoiceStatus(part)
			if !ok {
				utils.JSONError(c, http.StatusBadRequest, "Invalid status filter", part)
				return
			}
			statuses = append(statuses, status)
		}
	}

	invoices, err := h.BillingService.ListCustomerInvoices(c.Request.Context(), c.Param("id"), statuses...)
	if err != nil {
		utils.RespondError(c, err, "Failed to fetch invoices")
		return
	}
	c.JSON(http.StatusOK, invoices)
}

func (h *BillingHandler) ListInsurerInvoicesHandler(c *gin.Context) {
	invoices, err := h.BillingService.ListInsurerInvoices(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err, "Failed to fetch invoices")
		return
	}
	c.JSON(http.StatusOK, invoices)
}

// ProcessPaymentHandler records a gateway confirmation entered by an admin.
// Customer checkouts are confirmed through the signed webhook instead.
func (h *BillingHandler) ProcessPaymentHandler(c *gin.Context) {
	var req models.ProcessPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}
	payment, err := h.BillingService.ProcessPayment(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err, "Failed to process payment")
		return
	}
	getLogger(c).Info("Payment recorded",
		zap.String("paymentId", payment.ID),
		zap.String("status", string(payment.Status)))
	c.JSON(http.StatusOK, payment)
}

// RecordCashPaymentHandler settles an invoice collected in cash.
func (h *BillingHandler) RecordCashPaymentHandler(c *gin.Context) {
	invoice, err := h.BillingService.GetInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err, "Failed to fetch invoice")
		return
	}
	if !canAccessInvoice(c, invoice) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
		return
	}

	payment, err := h.BillingService.RecordCashPayment(c.Request.Context(), invoice.ID)
	if err != nil {
		utils.RespondError(c, err, "Failed to record cash payment")
		return
	}
	c.JSON(http.StatusOK, payment)
}

func (h *BillingHandler) ListCustomerPaymentsHandler(c *gin.Context) {
	payments, err := h.BillingService.ListCustomerPayments(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err, "Failed to fetch payments")
		return
	}
	c.JSON(http.StatusOK, payments)
}

// EnableAutoPayHandler starts a subscription for a policy, or for the
// policies of an invoice when no policy id is given.
func (h *BillingHandler) EnableAutoPayHandler(c *gin.Context) {
	var req models.EnableAutoPayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}
	if !isSelfOrAdmin(c, req.CustomerID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
		return
	}

	var (
		subscriptionID string
		err            error
	)
	switch {
	case req.PolicyID != "":
		subscriptionID, err = h.BillingService.EnableAutoPayPolicy(c.Request.Context(), req.CustomerID, req.PolicyID, req.Months, req.Amount)
	case req.InvoiceID != "":
		subscriptionID, err = h.BillingService.EnableAutoPay(c.Request.Context(), req.CustomerID, req.InvoiceID, req.Months, req.Amount)
	default:
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", "policyId or invoiceId is required")
		return
	}
	if err != nil {
		utils.RespondError(c, err, "Failed to enable autopay")
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscriptionId": subscriptionID})
}

func (h *BillingHandler) DisableAutoPayHandler(c *gin.Context) {
	var req models.DisableAutoPayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}
	if !isSelfOrAdmin(c, req.CustomerID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
		return
	}
	if err := h.BillingService.DisableAutoPay(c.Request.Context(), req.CustomerID, req.SubscriptionID, req.PolicyID); err != nil {
		utils.RespondError(c, err, "Failed to disable autopay")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Autopay disabled"})
}

func (h *BillingHandler) AutoPayStatusHandler(c *gin.Context) {
	status, err := h.BillingService.AutoPayStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err, "Failed to fetch autopay status")
		return
	}
	c.JSON(http.StatusOK, status)
}

// canAccessInvoice lets admins through, and otherwise only the billed
// customer or the issuing insurer.
func canAccessInvoice(c *gin.Context, invoice *models.Invoice) bool {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return false
	}
	switch p.Role {
	case models.RoleAdmin:
		return true
	case models.RoleCustomer:
		return invoice.CustomerID == p.ID
	case models.RoleInsurer:
		return invoice.InsurerID == p.ID
	}
	return false
}

func isSelfOrAdmin(c *gin.Context, customerID string) bool {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return false
	}
	return p.Role == models.RoleAdmin || (p.Role == models.RoleCustomer && p.ID == customerID)
}
