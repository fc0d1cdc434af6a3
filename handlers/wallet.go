// handlers/wallet.go
package handlers

import (
	"strconv"

	"github.com/rajnidolly853-ship-it/smartearn-pro/middleware"
	"github.com/rajnidolly853-ship-it/smartearn-pro/services"

	"github.com/gofiber/fiber/v2"
)

func SetupWalletRoutes(app *fiber.App, ledger *services.LedgerService) {
	secured := app.Group("/wallet", middleware.UserContextMiddleware())

	secured.Get("/", func(c *fiber.Ctx) error {
		wallet, err := ledger.Balance(userID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(wallet)
	})

	secured.Get("/transactions", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "20"))
		records, err := ledger.History(userID(c), limit)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"transactions": records})
	})
}
