package handlers

import (
	"net/http"

	"conexx/internal/common"
	"conexx/internal/services"

	"github.com/labstack/echo/v4"
)

type AuthHandlers struct {
	authService services.AuthService
}

func NewAuthHandlers(authService services.AuthService) *AuthHandlers {
	return &AuthHandlers{authService: authService}
}

// Login handles POST /v1/auth/login
func (h *AuthHandlers) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format", nil)
	}
	if req.Email == "" || req.Password == "" {
		return common.SendError(c, http.StatusBadRequest, "INVALID_REQUEST", "Email and password are required", nil)
	}

	response, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return common.SendError(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password", nil)
	}
	return common.SendData(c, http.StatusOK, response)
}
