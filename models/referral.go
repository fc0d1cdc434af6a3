package models

import "time"

// ReferralStatus tracks whether the referee has earned yet
type ReferralStatus string

const (
	ReferralStatusPending ReferralStatus = "pending" // joined, no qualifying earn yet
	ReferralStatusActive  ReferralStatus = "active"  // first qualifying earn done, bonus paid
)

// ReferralLink records who invited whom. At most one row per referee
// (first-write-wins); BonusPaid flips false→true exactly once, together with
// paying both parties.
type ReferralLink struct {
	ID         string         `gorm:"primaryKey;type:uuid" json:"id"`
	ReferrerID string         `gorm:"index;not null" json:"referrer_id"`
	RefereeID  string         `gorm:"uniqueIndex;not null" json:"referee_id"`
	Status     ReferralStatus `gorm:"type:varchar(16);not null;default:'pending'" json:"status"`
	BonusPaid  bool           `gorm:"default:false" json:"bonus_paid"`

	BonusPaidAt *time.Time `json:"bonus_paid_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime"`
}
