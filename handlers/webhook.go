package handlers

import (
	"net/http"

	ierr "insurepay/errors"
	"insurepay/services/billing"
	"insurepay/services/gateway"
	"insurepay/utils"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WebhookHandler receives gateway callbacks. Deliveries that can never
// succeed are acknowledged with 200; transient failures answer 5xx so the
// gateway redelivers.
type WebhookHandler struct {
	Gateway        gateway.Gateway
	BillingService billing.BillingService
}

func NewWebhookHandler(gw gateway.Gateway, bs billing.BillingService) *WebhookHandler {
	return &WebhookHandler{Gateway: gw, BillingService: bs}
}

func (h *WebhookHandler) HandleWebhook(c *gin.Context) {
	logger := getLogger(c)
	provider := c.Param("provider")
	if provider != h.Gateway.Provider() {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown payment provider"})
		return
	}

	payload, err := c.GetRawData()
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid webhook payload", err.Error())
		return
	}

	event, err := h.Gateway.ParseWebhook(payload, c.Request.Header)
	if err != nil {
		if errors.Is(err, gateway.ErrInvalidSignature) {
			logger.Warn("Webhook signature rejected", zap.String("provider", provider))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook signature"})
			return
		}
		utils.RespondError(c, err, "Invalid webhook payload")
		return
	}

	payment, err := h.BillingService.HandleWebhook(c.Request.Context(), event)
	if err != nil {
		if !permanentWebhookFailure(err) {
			utils.RespondError(c, err, "Webhook processing failed")
			return
		}
		logger.Error("Webhook processing failed",
			zap.String("eventId", event.ID),
			zap.String("event", event.RawType),
			zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"status": "failed"})
		return
	}
	if payment == nil {
		logger.Debug("Webhook ignored", zap.String("event", event.RawType))
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}
	logger.Info("Webhook processed",
		zap.String("event", event.RawType),
		zap.String("paymentId", payment.ID),
		zap.String("status", string(payment.Status)))
	c.JSON(http.StatusOK, gin.H{"status": "processed", "paymentId": payment.ID})
}

// permanentWebhookFailure reports errors that a redelivery cannot fix.
func permanentWebhookFailure(err error) bool {
	return ierr.IsNotFound(err) || ierr.IsValidation(err) || ierr.IsInvalidOperation(err)
}
