// handlers/notifications.go
package handlers

import (
	"strconv"

	"github.com/rajnidolly853-ship-it/smartearn-pro/middleware"
	"github.com/rajnidolly853-ship-it/smartearn-pro/services"

	"github.com/gofiber/fiber/v2"
)

func SetupNotificationRoutes(app *fiber.App, notifications *services.NotificationService) {
	secured := app.Group("/notifications", middleware.UserContextMiddleware())

	secured.Get("/", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "20"))
		items, err := notifications.List(userID(c), limit)
		if err != nil {
			return respondError(c, err)
		}
		unread, err := notifications.UnreadCount(userID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"notifications": items, "unread": unread})
	})

	secured.Post("/:id/read", func(c *fiber.Ctx) error {
		if err := notifications.MarkRead(userID(c), c.Params("id")); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	secured.Post("/read-all", func(c *fiber.Ctx) error {
		if err := notifications.MarkAllRead(userID(c)); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
