package utils_test

import (
	"strings"
	"testing"

	"github.com/rajnidolly853-ship-it/smartearn-pro/utils"
)

func TestFormatINR(t *testing.T) {
	got := utils.FormatINR(1.5)
	if got != "₹1.50" {
		t.Errorf("FormatINR(1.5) = %q, want ₹1.50", got)
	}

	got = utils.FormatINR(125000)
	if !strings.HasPrefix(got, "₹") || !strings.Contains(got, ",") {
		t.Errorf("FormatINR(125000) = %q, want rupee sign and digit grouping", got)
	}
}

func TestFormatCoins(t *testing.T) {
	if got := utils.FormatCoins(500); got != "500 coins" {
		t.Errorf("FormatCoins(500) = %q, want \"500 coins\"", got)
	}
}
