package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// RequireAdmin gates admin-only routes. Must run after Auth, which puts
// the authenticated role into the request locals.
func RequireAdmin(c *fiber.Ctx) error {
	role, _ := c.Locals("role").(string)
	if role != "admin" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Access denied. Admins only."})
	}
	return c.Next()
}
