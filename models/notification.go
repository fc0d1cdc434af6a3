package models

import "time"

// NotificationType buckets notifications for the UI
type NotificationType string

const (
	NotificationTypeReward     NotificationType = "reward"
	NotificationTypeWithdrawal NotificationType = "withdrawal"
	NotificationTypeSystem     NotificationType = "system"
	NotificationTypePromo      NotificationType = "promo"
)

// Notification is a domain event queued for the user. The core only writes
// rows; the notifier worker hands undispatched ones to the external push
// gateway and flips Dispatched. Formatting/delivery stays outside the core.
type Notification struct {
	ID      string           `gorm:"primaryKey;type:uuid" json:"id"`
	UserID  string           `gorm:"index;not null" json:"user_id"`
	Title   string           `gorm:"size:256;not null" json:"title"`
	Message string           `gorm:"type:text;not null" json:"message"`
	Type    NotificationType `gorm:"type:varchar(16);not null;default:'system'" json:"type"`
	Data    JSONMap          `gorm:"type:jsonb" json:"data,omitempty"`

	IsRead     bool `gorm:"default:false;index" json:"is_read"`
	Dispatched bool `gorm:"default:false;index" json:"-"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}
