package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/hivework/platform_be_hivework/internal/utils"
)

// claimsFrom pulls the verified claims that JWTAuth stashed on the context.
func claimsFrom(c *fiber.Ctx) (*utils.Claims, bool) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return nil, false
	}
	claims, ok := token.Claims.(*utils.Claims)
	if !ok || claims == nil {
		return nil, false
	}
	return claims, true
}

func normalizeRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}
