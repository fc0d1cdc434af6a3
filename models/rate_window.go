package models

import "time"

// RewardAction keys a rate window and names the rewarded action being gated.
type RewardAction string

const (
	ActionWatchAd      RewardAction = "watch_ad"
	ActionSpinWheel    RewardAction = "spin_wheel"
	ActionDailyCheckin RewardAction = "daily_checkin"
	ActionTaskOffer    RewardAction = "task_offer"
	ActionWithdrawal   RewardAction = "withdrawal"
)

// RateWindow tracks time-windowed activity for one (user, action) pair.
// It serves three query shapes:
//   - cooldown: time since LastActionAt
//   - rolling rate limit: count of Timestamps in the trailing hour
//   - daily cap: DayCount, valid only while DayKey equals today's date string
//
// Counters live server-side in the same store as the ledger so concurrent
// tabs or devices cannot race past a cap.
type RateWindow struct {
	ID     uint         `gorm:"primaryKey" json:"id"`
	UserID string       `gorm:"uniqueIndex:idx_rate_user_action;not null" json:"user_id"`
	Action RewardAction `gorm:"uniqueIndex:idx_rate_user_action;type:varchar(32);not null" json:"action"`

	// Unix-millisecond action times inside the trailing window, pruned on write.
	Timestamps Int64List `gorm:"type:jsonb" json:"timestamps"`

	LastActionAt *time.Time `json:"last_action_at,omitempty"`

	// Calendar-day counter. DayKey is YYYY-MM-DD; a mismatch with today means
	// the count is stale and reads as zero.
	DayKey   string `gorm:"size:10" json:"day_key"`
	DayCount int    `gorm:"default:0" json:"day_count"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
