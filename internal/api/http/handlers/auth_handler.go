package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-service/internal/api/dto"
	"github.com/spec-kit/auth-service/internal/service"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

// AuthHandler exposes login and token-check endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.NewBadRequest("username and password required")
	}

	token, err := h.auth.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		return apperrors.NewUnauthorized("Invalid username or password!")
	}

	return c.JSON(dto.LoginResponse{Token: token})
}

// Check handles GET /auth/check. The token gate has already verified the
// credential by the time this runs; responding ok is all that is left.
func (h *AuthHandler) Check(c *fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(fiber.Map{"ok": true})
}
