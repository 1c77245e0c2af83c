package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/smart-hospital-client/internal/domain"
	apperrors "github.com/spec-kit/smart-hospital-client/pkg/util"
)

// RequireRole ensures the principal carries one of the allowed roles.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.Claims == nil {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Claims.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequireAdmin allows the roles that share the admin dashboard.
func RequireAdmin() fiber.Handler {
	return RequireRole(domain.RoleDean, domain.RoleBMCCommissioner)
}
