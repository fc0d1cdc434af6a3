// handlers/referrals.go
package handlers

import (
	"github.com/rajnidolly853-ship-it/smartearn-pro/middleware"
	"github.com/rajnidolly853-ship-it/smartearn-pro/services"

	"github.com/gofiber/fiber/v2"
)

func SetupReferralRoutes(app *fiber.App, referrals *services.ReferralService) {
	secured := app.Group("/referrals", middleware.UserContextMiddleware())

	secured.Get("/", func(c *fiber.Ctx) error {
		summary, err := referrals.Summary(userID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(summary)
	})

	secured.Post("/apply", func(c *fiber.Ctx) error {
		var body struct {
			Code string `json:"code"`
		}
		if err := c.BodyParser(&body); err != nil || body.Code == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "referral code required",
			})
		}

		link, err := referrals.Apply(userID(c), body.Code)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(link)
	})
}
