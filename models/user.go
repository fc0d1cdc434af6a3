package models

import "time"

// User is the local account record. Authentication happens upstream (the
// gateway forwards an already-verified user id); this row carries the fields
// the risk engine and referral ledger need server-side.
type User struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	DisplayName string `gorm:"size:128" json:"display_name"`
	Email       string `gorm:"index" json:"email,omitempty"`
	PhotoURL    string `gorm:"type:text" json:"photo_url,omitempty"`

	// Guest sessions can earn but never withdraw.
	IsAnonymous bool `gorm:"default:false" json:"is_anonymous"`

	// Unique only among assigned codes; rows without one stay empty until the
	// invite screen first asks for it.
	ReferralCode string  `gorm:"size:8;uniqueIndex:idx_users_referral_code,where:referral_code <> ''" json:"referral_code"`
	ReferredBy   *string `gorm:"index" json:"referred_by,omitempty"`

	WarningCount int    `gorm:"default:0" json:"warning_count"`
	Role         string `gorm:"size:16;default:'user'" json:"role"` // user | admin

	IsBanned  bool       `gorm:"default:false;index" json:"is_banned"`
	BanReason string     `json:"ban_reason,omitempty"`
	BannedAt  *time.Time `json:"banned_at,omitempty"`
	BannedBy  *string    `json:"banned_by,omitempty"`

	LastActiveAt *time.Time `json:"last_active_at,omitempty"`

	Timestamps
}

func (u *User) IsAdmin() bool {
	return u.Role == "admin"
}

// UserDevice links a device fingerprint to an account. One physical device
// showing up under too many accounts is the strongest multi-accounting signal
// the risk engine has.
type UserDevice struct {
	ID         string    `gorm:"primaryKey;size:128" json:"id"` // "<userID>_<deviceID>"
	UserID     string    `gorm:"index;not null" json:"user_id"`
	DeviceID   string    `gorm:"index;not null" json:"device_id"`
	UserAgent  string    `gorm:"type:text" json:"user_agent,omitempty"`
	LastSeenAt time.Time `json:"last_seen_at"`

	Timestamps
}
