package handlers

import (
	"net/http"

	"insurepay/middleware"
	"insurepay/models"
	"insurepay/services/auth"
	"insurepay/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler exposes login, logout and OTP sign-in.
type AuthHandler struct {
	AuthService auth.AuthService
}

func NewAuthHandler(as auth.AuthService) *AuthHandler {
	return &AuthHandler{AuthService: as}
}

// LoginHandler exchanges email and password for a bearer token.
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	resp, err := h.AuthService.Login(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err, "Login failed")
		return
	}
	getLogger(c).Info("Login succeeded", zap.String("id", resp.ID), zap.String("role", string(resp.Role)))
	c.JSON(http.StatusOK, resp)
}

// LogoutHandler revokes the caller's session.
func (h *AuthHandler) LogoutHandler(c *gin.Context) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	if err := h.AuthService.Logout(c.Request.Context(), *p); err != nil {
		utils.RespondError(c, err, "Logout failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// RequestOTPHandler emails a one-time sign-in code. The response does not
// reveal whether the address belongs to an account.
func (h *AuthHandler) RequestOTPHandler(c *gin.Context) {
	var req models.OTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}
	if err := h.AuthService.RequestOTP(c.Request.Context(), req.Email); err != nil {
		utils.RespondError(c, err, "Failed to send OTP")
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "If the account exists, a code has been sent"})
}

// VerifyOTPHandler signs in with a previously emailed code.
func (h *AuthHandler) VerifyOTPHandler(c *gin.Context) {
	var req models.OTPVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}
	resp, err := h.AuthService.VerifyOTP(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		utils.RespondError(c, err, "OTP verification failed")
		return
	}
	c.JSON(http.StatusOK, resp)
}
