package middleware

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// RequireActiveUser re-checks users.is_active on every authenticated request,
// so deactivating an account cuts off its outstanding tokens immediately
// instead of at expiry. Runs after AttachJWTLocals.
func RequireActiveUser(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid, _ := c.Locals("userId").(string)
		if uid == "" {
			return fiber.ErrUnauthorized
		}

		var active bool
		if err := db.Table("users").Select("is_active").
			Where("id = ?", uid).Row().Scan(&active); err != nil {
			return fiber.ErrUnauthorized
		}
		if !active {
			return fiber.NewError(fiber.StatusForbidden, "account is disabled")
		}

		return c.Next()
	}
}
