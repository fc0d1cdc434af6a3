// handlers/common.go
package handlers

import (
	"errors"

	"github.com/rajnidolly853-ship-it/smartearn-pro/services"

	"github.com/gofiber/fiber/v2"
)

// respondError maps service errors onto HTTP. Policy denials are 403 with the
// user-facing reason; idempotency conflicts are 409; everything unexpected is
// a 500 with the cause attached.
func respondError(c *fiber.Ctx, err error) error {
	var denied *services.DeniedError
	if errors.As(err, &denied) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":      denied.Reason,
			"risk_score": denied.RiskScore,
		})
	}

	switch {
	case errors.Is(err, services.ErrAlreadyProcessed):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "already processed",
		})
	case errors.Is(err, services.ErrInsufficientBalance):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "insufficient balance",
		})
	case errors.Is(err, services.ErrInvalidAmount):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid amount",
		})
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrMethodNotFound),
		errors.Is(err, services.ErrOfferNotFound),
		errors.Is(err, services.ErrReferralNotFound),
		errors.Is(err, services.ErrTransactionNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal error",
		"cause": err.Error(),
	})
}

func userID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}

func deviceID(c *fiber.Ctx) string {
	id, _ := c.Locals("device_id").(string)
	return id
}

func adminID(c *fiber.Ctx) string {
	id, _ := c.Locals("admin_id").(string)
	return id
}
