package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/medconsult/consultation-service/pkg/util/errorutil"
)

const claimsKey = "auth_claims"

// AuthMiddleware validates bearer tokens. It never touches the store.
type AuthMiddleware struct {
	tokens *TokenManager
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	claims, err := m.tokens.Verify(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		if errors.Is(err, ErrMissingToken) {
			return apperrors.NewUnauthorized("Access denied, token missing")
		}
		return apperrors.NewInvalidToken("Invalid or expired token")
	}

	c.Locals(claimsKey, claims)
	return c.Next()
}

// ClaimsFromContext retrieves the verified claims.
func ClaimsFromContext(c *fiber.Ctx) (*Claims, bool) {
	val := c.Locals(claimsKey)
	if val == nil {
		return nil, false
	}
	claims, ok := val.(*Claims)
	return claims, ok && claims != nil
}

// IdentityFromContext is a shorthand for handlers behind the role gate.
func IdentityFromContext(c *fiber.Ctx) (*Claims, error) {
	claims, ok := ClaimsFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("Unauthorized")
	}
	return claims, nil
}
