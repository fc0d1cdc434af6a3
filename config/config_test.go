package config_test

import (
	"testing"

	"github.com/rajnidolly853-ship-it/smartearn-pro/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SERVICE_TOKEN", "test-token")
	t.Setenv("DATABASE_URL", "postgres://localhost/test")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.DailyAdLimit != 20 {
		t.Errorf("DailyAdLimit = %d, want 20", cfg.DailyAdLimit)
	}
	if cfg.AdReward != 10 {
		t.Errorf("AdReward = %d, want 10", cfg.AdReward)
	}
	if cfg.SpinDailyLimit != 3 {
		t.Errorf("SpinDailyLimit = %d, want 3", cfg.SpinDailyLimit)
	}
	if len(cfg.SpinPrizes) != 8 || len(cfg.SpinProbabilities) != 8 {
		t.Errorf("default wheel has %d prizes / %d probabilities, want 8/8",
			len(cfg.SpinPrizes), len(cfg.SpinProbabilities))
	}
	if cfg.WithdrawalMin != 1000 {
		t.Errorf("WithdrawalMin = %d, want 1000", cfg.WithdrawalMin)
	}
}

func TestValidateRejectsBadWheel(t *testing.T) {
	base := func() *config.Config {
		return &config.Config{
			SpinPrizes:           []int64{10, 0},
			SpinProbabilities:    []float64{0.5, 0.5},
			DailyAdLimit:         20,
			SpinDailyLimit:       3,
			CheckinCapDays:       7,
			WithdrawalMin:        1000,
			WithdrawalMax:        100000,
			CoinToCurrencyRate:   1000,
			MaxDevicesPerAccount: 2,
			RateLimitPerHour:     100,
		}
	}

	if err := base().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cfg := base()
	cfg.SpinProbabilities = []float64{0.5, 0.3}
	if err := cfg.Validate(); err == nil {
		t.Error("probabilities not summing to 1 should be rejected")
	}

	cfg = base()
	cfg.SpinProbabilities = []float64{1.0}
	if err := cfg.Validate(); err == nil {
		t.Error("mismatched prize/probability lengths should be rejected")
	}

	cfg = base()
	cfg.SpinPrizes = []int64{-5, 0}
	if err := cfg.Validate(); err == nil {
		t.Error("negative prize should be rejected")
	}

	cfg = base()
	cfg.WithdrawalMax = 500
	if err := cfg.Validate(); err == nil {
		t.Error("max below min should be rejected")
	}
}
