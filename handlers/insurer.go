package handlers

import (
	"net/http"

	"insurepay/models"
	"insurepay/services/insurer"
	"insurepay/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// InsurerHandler serves insurer accounts, their policies and GST rates.
type InsurerHandler struct {
	InsurerService insurer.InsurerService
}

func NewInsurerHandler(is insurer.InsurerService) *InsurerHandler {
	return &InsurerHandler{InsurerService: is}
}

func (h *InsurerHandler) RegisterInsurerHandler(c *gin.Context) {
	var req models.InsurerRegistration
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}
	ins, err := h.InsurerService.Register(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err, "Failed to register insurer")
		return
	}
	getLogger(c).Info("Insurer registered", zap.String("insurerId", ins.ID))
	c.JSON(http.StatusCreated, ins)
}

func (h *InsurerHandler) GetInsurerHandler(c *gin.Context) {
	ins, err := h.InsurerService.GetInsurer(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err, "Failed to fetch insurer")
		return
	}
	c.JSON(http.StatusOK, ins)
}

func (h *InsurerHandler) ListInsurersHandler(c *gin.Context) {
	insurers, err := h.InsurerService.ListInsurers(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err, "Failed to fetch insurers")
		return
	}
	c.JSON(http.StatusOK, insurers)
}

func (h *InsurerHandler) CreatePolicyHandler(c *gin.Context) {
	var req models.CreatePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}
	policy, err := h.InsurerService.CreatePolicy(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		utils.RespondError(c, err, "Failed to create policy")
		return
	}
	c.JSON(http.StatusCreated, policy)
}

func (h *InsurerHandler) ListPoliciesHandler(c *gin.Context) {
	policies, err := h.InsurerService.ListPolicies(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err, "Failed to fetch policies")
		return
	}
	c.JSON(http.StatusOK, policies)
}

func (h *InsurerHandler) ListCustomersHandler(c *gin.Context) {
	customers, err := h.InsurerService.ListCustomers(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err, "Failed to fetch customers")
		return
	}
	c.JSON(http.StatusOK, customers)
}

// SetTaxRateHandler creates or replaces the GST rate of a policy type.
func (h *InsurerHandler) SetTaxRateHandler(c *gin.Context) {
	var req models.SetTaxRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}
	rate, err := h.InsurerService.SetTaxRate(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err, "Failed to set tax rate")
		return
	}
	c.JSON(http.StatusOK, rate)
}

func (h *InsurerHandler) ListTaxRatesHandler(c *gin.Context) {
	rates, err := h.InsurerService.ListTaxRates(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err, "Failed to fetch tax rates")
		return
	}
	c.JSON(http.StatusOK, rates)
}
