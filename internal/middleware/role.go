package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// RequireRoles gates a route to the listed roles. Runs after JWTAuth.
func RequireRoles(allowed ...string) fiber.Handler {
	allowedSet := make(map[string]bool, len(allowed))
	for _, r := range allowed {
		allowedSet[normalizeRole(r)] = true
	}

	return func(c *fiber.Ctx) error {
		claims, ok := claimsFrom(c)
		if !ok {
			return fiber.ErrUnauthorized
		}

		if !allowedSet[normalizeRole(claims.Role)] {
			return fiber.NewError(fiber.StatusForbidden, "forbidden: insufficient role")
		}

		return c.Next()
	}
}
