package handlers

import (
	"net/http"

	"insurepay/models"
	"insurepay/services/customer"
	"insurepay/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CustomerHandler struct {
	CustomerService customer.CustomerService
}

func NewCustomerHandler(cs customer.CustomerService) *CustomerHandler {
	return &CustomerHandler{CustomerService: cs}
}

type addPoliciesRequest struct {
	PolicyIDs []string `json:"policyIds" binding:"required,min=1,dive,required"`
}

func (h *CustomerHandler) RegisterCustomerHandler(c *gin.Context) {
	var req models.CustomerRegistration
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}
	cust, err := h.CustomerService.Register(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err, "Failed to register customer")
		return
	}
	getLogger(c).Info("Customer registered", zap.String("customerId", cust.ID))
	c.JSON(http.StatusCreated, cust)
}

func (h *CustomerHandler) GetCustomerHandler(c *gin.Context) {
	cust, err := h.CustomerService.GetCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err, "Failed to fetch customer")
		return
	}
	c.JSON(http.StatusOK, cust)
}

// ListCustomersHandler lists every customer, or those whose name contains
// the "name" query parameter.
func (h *CustomerHandler) ListCustomersHandler(c *gin.Context) {
	var (
		customers []models.Customer
		err       error
	)
	if name := c.Query("name"); name != "" {
		customers, err = h.CustomerService.SearchCustomers(c.Request.Context(), name)
	} else {
		customers, err = h.CustomerService.ListCustomers(c.Request.Context())
	}
	if err != nil {
		utils.RespondError(c, err, "Failed to fetch customers")
		return
	}
	c.JSON(http.StatusOK, customers)
}

func (h *CustomerHandler) AddPoliciesHandler(c *gin.Context) {
	var req addPoliciesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}
	cust, err := h.CustomerService.AddPolicies(c.Request.Context(), c.Param("id"), req.PolicyIDs)
	if err != nil {
		utils.RespondError(c, err, "Failed to add policies")
		return
	}
	c.JSON(http.StatusOK, cust)
}

func (h *CustomerHandler) PaymentHistoryHandler(c *gin.Context) {
	history, err := h.CustomerService.PaymentHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err, "Failed to fetch payment history")
		return
	}
	c.JSON(http.StatusOK, history)
}

func (h *CustomerHandler) AvailablePoliciesHandler(c *gin.Context) {
	policies, err := h.CustomerService.ListAvailablePolicies(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err, "Failed to fetch policies")
		return
	}
	c.JSON(http.StatusOK, policies)
}
