package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// AttachJWTLocals copies uid/role out of the verified token so handlers can
// read c.Locals("userId") / c.Locals("role") directly.
func AttachJWTLocals() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := claimsFrom(c)
		if !ok {
			return fiber.ErrUnauthorized
		}

		uid := strings.TrimSpace(claims.UserID)
		if uid == "" {
			return fiber.ErrUnauthorized
		}

		c.Locals("userId", uid)
		c.Locals("role", normalizeRole(claims.Role))

		return c.Next()
	}
}
