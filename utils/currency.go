// utils/currency.go
package utils

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Indian-English printer so amounts render with digit grouping the way the
// payout screens show them.
var printer = message.NewPrinter(language.MustParse("en-IN"))

// FormatINR renders a rupee amount for user-facing messages, e.g. "₹1,250.00".
func FormatINR(amount float64) string {
	return printer.Sprintf("₹%.2f", amount)
}

// FormatCoins renders a coin count with digit grouping, e.g. "12,500 coins".
func FormatCoins(coins int64) string {
	return printer.Sprintf("%d coins", coins)
}
