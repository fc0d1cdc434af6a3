// handlers/users.go
package handlers

import (
	"github.com/rajnidolly853-ship-it/smartearn-pro/middleware"
	"github.com/rajnidolly853-ship-it/smartearn-pro/services"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App, users *services.UserService, risk *services.RiskService) {
	secured := app.Group("/users", middleware.UserContextMiddleware())

	// Called by the gateway on login/refresh to mirror the profile locally.
	secured.Post("/sync", func(c *fiber.Ctx) error {
		var body services.ProfileInput
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}

		user, err := users.Sync(userID(c), body)
		if err != nil {
			return respondError(c, err)
		}

		if did := deviceID(c); did != "" {
			if err := risk.RegisterDevice(userID(c), did, c.Get("User-Agent")); err != nil {
				return respondError(c, err)
			}
		}
		return c.JSON(user)
	})

	secured.Get("/me", func(c *fiber.Ctx) error {
		user, err := users.Get(userID(c))
		if err != nil {
			return respondError(c, err)
		}
		users.Touch(userID(c))
		return c.JSON(user)
	})
}
