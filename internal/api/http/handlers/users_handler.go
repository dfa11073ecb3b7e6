package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-service/internal/api/dto"
	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/service"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

// UsersHandler exposes account management endpoints.
type UsersHandler struct {
	auth *service.AuthService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService) *UsersHandler {
	return &UsersHandler{auth: authService}
}

// Register handles POST /auth/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.NewBadRequest("username and password required")
	}

	user, err := h.auth.Register(c.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUsernameTaken) {
			return apperrors.NewConflict("username already taken")
		}
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"ok": true,
		"user": fiber.Map{
			"id":       user.ID,
			"username": user.Username,
		},
	})
}

// ChangePassword handles POST /auth/password/change for the authenticated user.
func (h *UsersHandler) ChangePassword(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Invalid token!")
	}

	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return apperrors.NewBadRequest("current and new password required")
	}

	if err := h.auth.ChangePassword(c.Context(), claims.Subject, req.CurrentPassword, req.NewPassword); err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return apperrors.NewUnauthorized("Invalid username or password!")
		}
		return err
	}

	return c.JSON(fiber.Map{"ok": true})
}
