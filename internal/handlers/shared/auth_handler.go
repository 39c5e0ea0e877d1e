package handlers

import (
	"strings"

	"distress-server/internal/services"
	"distress-server/internal/utils"
	"distress-server/internal/validators"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register creates a user account and returns a short lived token
func (h *AuthHandler) Register(c *gin.Context) {
	var request validators.RegisterRequest
	if !bindJSON(c, &request) {
		return
	}

	result, err := h.authService.Register(c.Request.Context(), &request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, "User registered successfully", result)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var request validators.LoginRequest
	if !bindJSON(c, &request) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), &request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Login successful", result)
}

func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var request validators.LoginRequest
	if !bindJSON(c, &request) {
		return
	}

	result, err := h.authService.AdminLogin(c.Request.Context(), &request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Admin login successful", result)
}

// ValidateToken decodes the bearer token and echoes its claims
func (h *AuthHandler) ValidateToken(c *gin.Context) {
	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")

	claims, err := h.authService.ValidateToken(c.Request.Context(), strings.TrimSpace(token))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Token is valid", gin.H{
		"message": "Token is valid",
		"decoded": claims,
	})
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var request validators.RefreshTokenRequest
	if !bindJSON(c, &request) {
		return
	}

	token, err := h.authService.RefreshToken(c.Request.Context(), request.Token)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Token refreshed", gin.H{"token": token})
}
