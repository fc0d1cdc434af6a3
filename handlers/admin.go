// handlers/admin.go
package handlers

import (
	"strconv"

	"github.com/rajnidolly853-ship-it/smartearn-pro/middleware"
	"github.com/rajnidolly853-ship-it/smartearn-pro/models"
	"github.com/rajnidolly853-ship-it/smartearn-pro/services"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminRoutes wires the moderation surface. Everything here requires the
// admin context headers from the gateway on top of the service token.
func SetupAdminRoutes(app *fiber.App, admin *services.AdminService, withdrawals *services.WithdrawalService, settlements *services.SettlementService) {
	group := app.Group("/admin", middleware.AdminContextMiddleware())

	group.Get("/stats", func(c *fiber.Ctx) error {
		stats, err := admin.Stats()
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(stats)
	})

	// --- Users ---

	group.Get("/users", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "50"))
		offset, _ := strconv.Atoi(c.Query("offset", "0"))
		users, err := admin.ListUsers(limit, offset)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"users": users})
	})

	group.Get("/users/:id", func(c *fiber.Ctx) error {
		detail, err := admin.GetUser(c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(detail)
	})

	group.Post("/users/:id/adjust", func(c *fiber.Ctx) error {
		var body struct {
			Delta  int64  `json:"delta"`
			Reason string `json:"reason"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}

		txnID, err := admin.AdjustBalance(adminID(c), c.Params("id"), body.Delta, body.Reason)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"transaction_id": txnID})
	})

	group.Post("/users/:id/ban", func(c *fiber.Ctx) error {
		var body struct {
			Reason string `json:"reason"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}
		if err := admin.BanUser(adminID(c), c.Params("id"), body.Reason); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	group.Post("/users/:id/unban", func(c *fiber.Ctx) error {
		if err := admin.UnbanUser(adminID(c), c.Params("id")); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	// --- Withdrawals ---

	group.Get("/withdrawals", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "50"))
		requests, err := withdrawals.ListPending(limit)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"withdrawals": requests})
	})

	group.Post("/withdrawals/:id/approve", func(c *fiber.Ctx) error {
		var body struct {
			ExternalRef string `json:"external_ref"`
		}
		_ = c.BodyParser(&body)

		request, err := withdrawals.Approve(adminID(c), c.Params("id"), body.ExternalRef)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(request)
	})

	group.Post("/withdrawals/:id/reject", func(c *fiber.Ctx) error {
		var body struct {
			Reason string `json:"reason"`
		}
		if err := c.BodyParser(&body); err != nil || body.Reason == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "rejection reason required",
			})
		}

		request, err := withdrawals.Reject(adminID(c), c.Params("id"), body.Reason)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(request)
	})

	// --- Pending task earnings ---

	group.Get("/earnings/pending", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "50"))
		records, err := admin.ListPendingEarnings(limit)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"earnings": records})
	})

	group.Post("/earnings/:id/approve", func(c *fiber.Ctx) error {
		if err := admin.ApprovePendingEarning(adminID(c), c.Params("id")); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	group.Post("/earnings/:id/reject", func(c *fiber.Ctx) error {
		if err := admin.RejectPendingEarning(adminID(c), c.Params("id")); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	// --- Task offer catalog ---

	group.Post("/tasks", func(c *fiber.Ctx) error {
		var offer models.TaskOffer
		if err := c.BodyParser(&offer); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}
		if err := admin.CreateTaskOffer(adminID(c), &offer); err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(offer)
	})

	group.Post("/tasks/:id/activate", func(c *fiber.Ctx) error {
		if err := admin.SetTaskOfferActive(adminID(c), c.Params("id"), true); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	group.Post("/tasks/:id/deactivate", func(c *fiber.Ctx) error {
		if err := admin.SetTaskOfferActive(adminID(c), c.Params("id"), false); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	// --- Settlement export ---

	group.Post("/settlements/export", func(c *fiber.Ctx) error {
		if err := settlements.ExportLastMonth(); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusAccepted)
	})
}
