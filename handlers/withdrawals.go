// handlers/withdrawals.go
package handlers

import (
	"strconv"

	"github.com/rajnidolly853-ship-it/smartearn-pro/middleware"
	"github.com/rajnidolly853-ship-it/smartearn-pro/models"
	"github.com/rajnidolly853-ship-it/smartearn-pro/services"

	"github.com/gofiber/fiber/v2"
)

func SetupWithdrawalRoutes(app *fiber.App, withdrawals *services.WithdrawalService) {
	secured := app.Group("/withdrawals", middleware.UserContextMiddleware())

	secured.Get("/methods", func(c *fiber.Ctx) error {
		methods, err := withdrawals.Methods()
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"methods": methods})
	})

	secured.Get("/", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "20"))
		requests, err := withdrawals.ListForUser(userID(c), limit)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"withdrawals": requests})
	})

	secured.Post("/", func(c *fiber.Ctx) error {
		var body struct {
			MethodID string         `json:"method_id"`
			Amount   int64          `json:"amount"`
			Details  models.JSONMap `json:"details"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}

		request, err := withdrawals.Request(userID(c), deviceID(c), body.MethodID, body.Amount, body.Details)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(request)
	})
}
