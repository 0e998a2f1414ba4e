package handlers

import (
	"net/http"

	"insurepay/models"
	"insurepay/services/notification"
	"insurepay/utils"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	Notifier notification.Notifier
}

func NewNotificationHandler(n notification.Notifier) *NotificationHandler {
	return &NotificationHandler{Notifier: n}
}

// SendEmailHandler sends an ad-hoc email through the configured provider.
func (h *NotificationHandler) SendEmailHandler(c *gin.Context) {
	var req models.SendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}
	if req.Text == "" && req.HTML == "" {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", "text or html body is required")
		return
	}

	id, err := h.Notifier.SendEmail(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err, "Failed to send email")
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"id": id})
}
