// middleware/auth.go
package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// UserContextMiddleware extracts the user identity set by the Gateway.
// Authentication itself happens upstream; by the time a request reaches this
// service the Gateway has already verified the session and forwards the
// identity as headers.
func UserContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Get("X-User-ID")
		deviceID := c.Get("X-Device-ID")
		anonymous := strings.ToLower(c.Get("X-User-Anonymous")) == "true"

		// Everything except admin routes is per-user
		path := c.Path()
		if userID == "" && !strings.HasPrefix(path, "/admin/") {
			log.Printf("❌ [USER_CTX] X-User-ID missing on secured route: %s", path)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing X-User-ID — request must come through gateway with auth context",
			})
		}

		c.Locals("user_id", userID)
		c.Locals("device_id", deviceID)
		c.Locals("is_anonymous", anonymous)

		return c.Next()
	}
}

// AdminContextMiddleware guards the /admin surface: the Gateway must forward
// an admin identity via X-Admin-ID plus the admin role header.
func AdminContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		adminID := c.Get("X-Admin-ID")
		roles := c.Get("X-User-Roles")

		isAdmin := false
		for _, r := range strings.Split(roles, ",") {
			if strings.TrimSpace(r) == "admin" {
				isAdmin = true
				break
			}
		}
		if adminID == "" || !isAdmin {
			log.Printf("🚫 [ADMIN_CTX] admin context missing or not admin on %s", c.Path())
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "admin privileges required",
			})
		}

		c.Locals("admin_id", adminID)
		return c.Next()
	}
}
