// handlers/earnings.go
package handlers

import (
	"strconv"

	"github.com/rajnidolly853-ship-it/smartearn-pro/middleware"
	"github.com/rajnidolly853-ship-it/smartearn-pro/services"

	"github.com/gofiber/fiber/v2"
)

// SetupEarningRoutes wires every coin-earning surface: rewarded ads, the
// offerwall, the daily check-in and the spin wheel.
func SetupEarningRoutes(app *fiber.App, rewards *services.RewardService, checkins *services.CheckinService, spins *services.SpinService) {
	secured := app.Group("/earn", middleware.UserContextMiddleware())

	secured.Get("/status", func(c *fiber.Ctx) error {
		status, err := rewards.Status(userID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(status)
	})

	// --- Rewarded ads ---

	secured.Post("/ad", func(c *fiber.Ctx) error {
		result, err := rewards.GrantAdReward(userID(c), deviceID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(result)
	})

	// --- Offerwall tasks ---

	secured.Get("/tasks", func(c *fiber.Ctx) error {
		offers, err := rewards.Offers()
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"tasks": offers})
	})

	secured.Post("/tasks/:slug/complete", func(c *fiber.Ctx) error {
		result, err := rewards.CompleteTask(userID(c), deviceID(c), c.Params("slug"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(result)
	})

	// --- Daily check-in ---

	secured.Get("/checkin", func(c *fiber.Ctx) error {
		status, err := checkins.Status(userID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(status)
	})

	secured.Post("/checkin", func(c *fiber.Ctx) error {
		result, err := checkins.Claim(userID(c), deviceID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(result)
	})

	secured.Get("/checkin/calendar", func(c *fiber.Ctx) error {
		days, _ := strconv.Atoi(c.Query("days", "7"))
		calendar, err := checkins.Calendar(userID(c), days)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"calendar": calendar})
	})

	// --- Spin wheel ---

	secured.Get("/spin", func(c *fiber.Ctx) error {
		status, err := spins.Status(userID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(status)
	})

	secured.Post("/spin", func(c *fiber.Ctx) error {
		result, err := spins.Spin(userID(c), deviceID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(result)
	})
}
