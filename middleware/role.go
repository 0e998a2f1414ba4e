package middleware

import (
	"net/http"

	"insurepay/models"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

// RequireRole lets through principals holding one of roles.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		if !lo.Contains(roles, p.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			return
		}
		c.Next()
	}
}

// RequireSelfOrRole lets through an owner principal whose id equals the path
// parameter param, or any principal holding one of roles.
func RequireSelfOrRole(owner models.Role, param string, roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		if (p.Role == owner && p.ID == c.Param(param)) || lo.Contains(roles, p.Role) {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
	}
}
