package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/medconsult/consultation-service/internal/domain"
	apperrors "github.com/medconsult/consultation-service/pkg/util/errorutil"
)

// RoleSet is the set of roles a route group admits.
type RoleSet map[domain.Role]struct{}

// NewRoleSet builds a set from roles.
func NewRoleSet(roles ...domain.Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, role := range roles {
		set[role] = struct{}{}
	}
	return set
}

// Authorize fails with 401 when there are no claims and 403 when the role is outside allowed.
func Authorize(claims *Claims, allowed RoleSet) error {
	if claims == nil {
		return apperrors.NewUnauthorized("Unauthorized")
	}
	if _, ok := allowed[claims.Role]; !ok {
		return apperrors.NewForbidden("Forbidden: Insufficient permissions")
	}
	return nil
}

// RequireRole gates a route group to the given roles. It must run after AuthMiddleware.Handle.
func RequireRole(roles ...domain.Role) fiber.Handler {
	allowed := NewRoleSet(roles...)
	return func(c *fiber.Ctx) error {
		claims, _ := ClaimsFromContext(c)
		if err := Authorize(claims, allowed); err != nil {
			return err
		}
		return c.Next()
	}
}
