package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/org-directory/internal/domain"
	apperrors "github.com/spec-kit/org-directory/pkg/util/errorutil"
)

// RequireRole ensures the principal holds one of the allowed roles.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequireAuthenticated lets any operator through.
func RequireAuthenticated() fiber.Handler {
	return RequireRole()
}

// WriteGuard lets reads through for any operator and restricts every other
// method to admins.
func WriteGuard() fiber.Handler {
	admin := RequireRole(domain.RoleAdmin)
	authenticated := RequireAuthenticated()
	return func(c *fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
			return authenticated(c)
		default:
			return admin(c)
		}
	}
}
