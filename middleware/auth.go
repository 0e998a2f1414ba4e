package middleware

import (
	"context"
	"net/http"
	"strings"

	ierr "insurepay/errors"
	"insurepay/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const principalKey = "principal"

// SessionValidator resolves a bearer token to the principal it was issued to.
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (*models.Principal, error)
}

// JWTAuthMiddleware requires a valid bearer token with a live session.
func JWTAuthMiddleware(sessions SessionValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}

		principal, err := sessions.ValidateSession(c.Request.Context(), tokenString)
		if err != nil {
			status := ierr.HTTPStatusFromErr(err)
			if status != http.StatusInternalServerError {
				status = http.StatusUnauthorized
			} else {
				zap.L().Error("Session validation failed", zap.Error(err))
			}
			c.AbortWithStatusJSON(status, gin.H{"error": ierr.Hint(err, "Invalid token")})
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// GetPrincipal returns the principal set by JWTAuthMiddleware.
func GetPrincipal(c *gin.Context) (*models.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*models.Principal)
	return p, ok && p != nil
}

// SetPrincipal stores p on the context. Used by tests and internal callers.
func SetPrincipal(c *gin.Context, p *models.Principal) {
	c.Set(principalKey, p)
}
