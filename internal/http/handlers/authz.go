package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "asinity/internal/log"
	"asinity/internal/services"
)

func bearerToken(c *fiber.Ctx) string {
	h := c.Get(fiber.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// RequireUser rejects requests without a valid access token.
func RequireUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := auth.Parse(bearerToken(c))
		if err != nil || claims.Kind != "access" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
		}
		c.Locals("claims", claims)
		return c.Next()
	}
}

// RequireAdmin additionally checks the role claim.
func RequireAdmin(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := auth.Parse(bearerToken(c))
		if err != nil || claims.Kind != "access" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
		}
		if claims.Role != "ADMIN" {
			applog.Security(c, "access.denied.admin", map[string]any{"user": claims.Subject})
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "admin privilege required"})
		}
		c.Locals("claims", claims)
		return c.Next()
	}
}
