package models

// UserStats carries per-user earning counters and the check-in streak state.
// Mutated only by the reward and check-in engines.
//
// LastCheckInDate is a calendar date string (YYYY-MM-DD), not a timestamp:
// streak continuity is decided by day equality, so the claimable slot resets
// at local midnight no matter when the user last acted.
type UserStats struct {
	UserID          string `gorm:"primaryKey;type:uuid" json:"user_id"`
	CurrentStreak   int    `gorm:"default:0" json:"current_streak"`
	LastCheckInDate string `gorm:"size:10" json:"last_check_in_date,omitempty"`

	TasksCompleted int64 `gorm:"default:0" json:"tasks_completed"`
	AdsWatched     int64 `gorm:"default:0" json:"ads_watched"`
	SpinsUsed      int64 `gorm:"default:0" json:"spins_used"`
	ReferralCount  int64 `gorm:"default:0" json:"referral_count"`

	Timestamps
}
