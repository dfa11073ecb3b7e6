package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-service/internal/api/http/handlers"
	"github.com/spec-kit/auth-service/internal/auth"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes. Unmatched paths fall through to the
// Not Found envelope.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/register", cfg.Users.Register)

	protected := authGroup.Group("", cfg.AuthMiddleware.Handle)
	protected.Get("/check", cfg.Auth.Check)
	protected.Post("/password/change", cfg.Users.ChangePassword)

	app.Use(func(c *fiber.Ctx) error {
		return apperrors.NewNotFound()
	})
}
