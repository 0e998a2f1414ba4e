package utils

import (
	"net/http"

	ierr "insurepay/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse defines the structure of error responses
type ErrorResponse struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ErrorHandler is a middleware to catch panics and return structured errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				GetLogger().Error("Unhandled panic", zap.Any("error", err), zap.String("path", c.Request.URL.Path))

				c.JSON(http.StatusInternalServerError, ErrorResponse{
					Message: "Internal Server Error",
					Details: "An unexpected error occurred. Please try again later.",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// JSONError sends a standardized JSON error response
func JSONError(c *gin.Context, status int, message string, details string) {
	GetLogger().Warn(message, zap.String("details", details), zap.Int("status", status))
	c.JSON(status, ErrorResponse{Message: message, Details: details})
}

// RespondError writes err with the status its sentinel maps to. The hint
// attached to err is shown to the caller; the cause is only logged.
func RespondError(c *gin.Context, err error, fallback string) {
	status := ierr.HTTPStatusFromErr(err)
	message := ierr.Hint(err, fallback)
	if status >= http.StatusInternalServerError {
		GetLogger().Error(fallback, zap.Error(err), zap.Int("status", status), zap.String("path", c.Request.URL.Path))
	} else {
		GetLogger().Warn(fallback, zap.Error(err), zap.Int("status", status), zap.String("path", c.Request.URL.Path))
	}
	c.JSON(status, ErrorResponse{Message: message})
}
