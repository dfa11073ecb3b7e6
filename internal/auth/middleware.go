package auth

import (
	"context"
	"errors"
	"math"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-service/internal/domain"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

const claimsKey = "auth_claims"

// Stable unauthorized messages; these are part of the external contract.
const (
	msgMissingToken = "Missing token!"
	msgInvalidToken = "Invalid token!"
	msgExpiredToken = "Expired token!"
)

// BasicAuthenticator verifies raw username/password credentials. Implemented
// by the auth service; only consulted when the Basic fallback is enabled.
type BasicAuthenticator interface {
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
}

// Middleware gates protected routes: it parses the inbound Authorization
// credential and either attaches verified claims to the request or rejects
// it. The decision is made fresh per request; nothing persists across calls.
type Middleware struct {
	tokens *TokenManager
	basic  BasicAuthenticator
}

// NewMiddleware constructs the gate. Pass a nil BasicAuthenticator to keep
// the Basic fallback disabled.
func NewMiddleware(tokens *TokenManager, basic BasicAuthenticator) *Middleware {
	return &Middleware{tokens: tokens, basic: basic}
}

// Handle enforces authentication for protected routes.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return apperrors.NewUnauthorized(msgMissingToken)
	}

	cred := parseCredential(header)
	switch cred.scheme {
	case schemeBearer:
		claims, err := m.tokens.Verify(cred.token)
		if err != nil {
			if errors.Is(err, ErrTokenExpired) {
				return apperrors.NewUnauthorized(msgExpiredToken)
			}
			return apperrors.NewUnauthorized(msgInvalidToken)
		}
		c.Locals(claimsKey, claims)
		return c.Next()

	case schemeBasic:
		if m.basic == nil {
			return apperrors.NewUnauthorized(msgInvalidToken)
		}
		username, password, ok := decodeBasicPayload(cred.token)
		if !ok {
			return apperrors.NewUnauthorized(msgInvalidToken)
		}
		user, err := m.basic.Authenticate(c.Context(), username, password)
		if err != nil {
			return apperrors.NewUnauthorized(msgInvalidToken)
		}
		// Identity for this request only; the synthesized claims are never
		// re-encoded into a shareable token, so expiry is left maximal.
		c.Locals(claimsKey, &Claims{Subject: user.ID, ExpiresAt: math.MaxUint64})
		return c.Next()

	default:
		return apperrors.NewUnauthorized(msgInvalidToken)
	}
}

// ClaimsFromContext retrieves the verified claims attached by Handle.
func ClaimsFromContext(c *fiber.Ctx) (*Claims, bool) {
	val := c.Locals(claimsKey)
	if val == nil {
		return nil, false
	}
	claims, ok := val.(*Claims)
	return claims, ok
}
