// Package config loads all tunables from environment variables via envconfig.
// Every earning limit, reward amount and risk threshold is externally supplied
// so ops can retune the economy without a deploy.
package config

import (
	"fmt"
	"math"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// --- Server ---
	ListenAddr     string `envconfig:"LISTEN_ADDR" default:":5300"`
	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`
	ServiceToken   string `envconfig:"SERVICE_TOKEN" required:"true"`

	// --- Database ---
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// --- Ads ---
	DailyAdLimit  int   `envconfig:"DAILY_AD_LIMIT" default:"20"`
	AdCooldownSec int   `envconfig:"AD_COOLDOWN_SEC" default:"30"`
	AdReward      int64 `envconfig:"AD_REWARD" default:"10"`

	// --- Spin wheel ---
	SpinDailyLimit    int       `envconfig:"SPIN_DAILY_LIMIT" default:"3"`
	SpinPrizes        []int64   `envconfig:"SPIN_PRIZES" default:"1,5,10,2,50,5,20,0"`
	SpinProbabilities []float64 `envconfig:"SPIN_PROBABILITIES" default:"0.3,0.2,0.1,0.2,0.02,0.1,0.05,0.03"`

	// --- Daily check-in ---
	CheckinBase      int64 `envconfig:"CHECKIN_BASE" default:"5"`
	CheckinIncrement int64 `envconfig:"CHECKIN_INCREMENT" default:"5"`
	CheckinCapDays   int   `envconfig:"CHECKIN_CAP_DAYS" default:"7"`

	// --- Withdrawals ---
	WithdrawalMin      int64   `envconfig:"WITHDRAWAL_MIN" default:"1000"`
	WithdrawalMax      int64   `envconfig:"WITHDRAWAL_MAX" default:"100000"`
	CoinToCurrencyRate float64 `envconfig:"COIN_TO_CURRENCY_RATE" default:"1000"` // coins per ₹1

	// --- Referrals ---
	ReferralBonusReferrer int64 `envconfig:"REFERRAL_BONUS_REFERRER" default:"50"`
	ReferralBonusReferee  int64 `envconfig:"REFERRAL_BONUS_REFEREE" default:"25"`

	// --- Risk ---
	MaxDevicesPerAccount int `envconfig:"MAX_DEVICES_PER_ACCOUNT" default:"2"`
	RateLimitPerHour     int `envconfig:"RATE_LIMIT_PER_HOUR" default:"100"`

	// --- Notifications ---
	PushGatewayURL string `envconfig:"PUSH_GATEWAY_URL" default:""`

	// --- Settlement report export (Cloudflare R2) ---
	R2AccountID       string `envconfig:"CLOUDFLARE_ACCOUNT_ID" default:""`
	R2AccessKeyID     string `envconfig:"R2_ACCESS_KEY_ID" default:""`
	R2AccessKeySecret string `envconfig:"R2_ACCESS_KEY_SECRET" default:""`
	R2BucketName      string `envconfig:"R2_BUCKET_NAME" default:""`
}

func (c *Config) Validate() error {
	if len(c.SpinPrizes) == 0 || len(c.SpinPrizes) != len(c.SpinProbabilities) {
		return fmt.Errorf("SPIN_PRIZES and SPIN_PROBABILITIES must be non-empty and the same length (got %d and %d)",
			len(c.SpinPrizes), len(c.SpinProbabilities))
	}
	var sum float64
	for i, p := range c.SpinProbabilities {
		if p < 0 {
			return fmt.Errorf("SPIN_PROBABILITIES[%d] is negative", i)
		}
		if c.SpinPrizes[i] < 0 {
			return fmt.Errorf("SPIN_PRIZES[%d] is negative", i)
		}
		sum += p
	}
	if math.Abs(sum-1.0) > 1e-6 {
		return fmt.Errorf("SPIN_PROBABILITIES must sum to 1.0, got %f", sum)
	}
	if c.DailyAdLimit <= 0 || c.SpinDailyLimit <= 0 {
		return fmt.Errorf("DAILY_AD_LIMIT and SPIN_DAILY_LIMIT must be positive")
	}
	if c.CheckinCapDays <= 0 {
		return fmt.Errorf("CHECKIN_CAP_DAYS must be positive")
	}
	if c.WithdrawalMin <= 0 || c.WithdrawalMax < c.WithdrawalMin {
		return fmt.Errorf("invalid WITHDRAWAL_MIN/WITHDRAWAL_MAX (%d/%d)", c.WithdrawalMin, c.WithdrawalMax)
	}
	if c.CoinToCurrencyRate <= 0 {
		return fmt.Errorf("COIN_TO_CURRENCY_RATE must be positive")
	}
	if c.MaxDevicesPerAccount <= 0 || c.RateLimitPerHour <= 0 {
		return fmt.Errorf("MAX_DEVICES_PER_ACCOUNT and RATE_LIMIT_PER_HOUR must be positive")
	}
	return nil
}

// Load reads the environment into a Config and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
