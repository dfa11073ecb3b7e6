package http

import (
	"context"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"

	"github.com/spec-kit/auth-service/internal/observability"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

// RegisterMiddlewares attaches global middlewares: request timeout, error
// handling, CORS, default security headers, and request logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration, corsHosts []string) {
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(errorHandlingMiddleware(logger, metrics))
	app.Use(corsMiddleware(corsHosts))
	app.Use(securityHeadersMiddleware())
	app.Use(observability.RequestLogger(logger, metrics))
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func corsMiddleware(hosts []string) fiber.Handler {
	if len(hosts) == 0 {
		return cors.New()
	}
	return cors.New(cors.Config{
		AllowOrigins:     strings.Join(hosts, ","),
		AllowCredentials: true,
	})
}

func securityHeadersMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "no-referrer")
		return c.Next()
	}
}

// errorHandlingMiddleware recovers panics and renders every error as the
// fixed {ok, error} envelope. Internal causes are logged, never serialized.
func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				apiErr := apperrors.ToAPIError(err)
				metrics.RecordError(c.Path(), c.Method(), apiErr.HTTPStatus)
				if apiErr.HTTPStatus >= 500 {
					logger.Error("request failed", zap.Error(apiErr))
				}
				c.Status(apiErr.HTTPStatus)
				_ = c.JSON(fiber.Map{"ok": false, "error": apiErr.Message})
				err = nil
			}
		}()
		return c.Next()
	}
}
