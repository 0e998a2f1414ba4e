package handlers

import (
	"insurepay/middleware"
	"insurepay/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// getLogger returns the request logger tagged with the caller, when known.
func getLogger(c *gin.Context) *zap.Logger {
	logger := utils.GetLogger()
	if l, exists := c.Get("logger"); exists {
		if ctxLogger, ok := l.(*zap.Logger); ok {
			logger = ctxLogger
		}
	}
	if p, ok := middleware.GetPrincipal(c); ok {
		logger = logger.With(zap.String("principalId", p.ID), zap.String("role", string(p.Role)))
	}
	return logger
}
