// services/notification.go
package services

import (
	"fmt"

	"github.com/rajnidolly853-ship-it/smartearn-pro/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationService queues domain events for users. Rows are written here
// and picked up by the notifier worker; delivery (push, toast) is entirely
// the external dispatcher's problem.
type NotificationService struct {
	DB *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{DB: db}
}

func (s *NotificationService) Create(userID, title, message string, ntype models.NotificationType, data models.JSONMap) error {
	return s.DB.Create(&models.Notification{
		ID:      uuid.NewString(),
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    ntype,
		Data:    data,
	}).Error
}

// Event templates. The core owns the wording; the UI shows it verbatim or
// maps it to a localized string.

func (s *NotificationService) NotifyWithdrawalApproved(userID, amount string) error {
	return s.Create(userID,
		"Withdrawal Approved! 🎉",
		fmt.Sprintf("Your withdrawal of %s has been processed.", amount),
		models.NotificationTypeWithdrawal, nil)
}

func (s *NotificationService) NotifyWithdrawalRejected(userID, reason string) error {
	return s.Create(userID,
		"Withdrawal Rejected",
		fmt.Sprintf("Your withdrawal was rejected: %s. Coins have been refunded.", reason),
		models.NotificationTypeWithdrawal, nil)
}

func (s *NotificationService) NotifyReferralBonus(userID string, coins int64) error {
	return s.Create(userID,
		"Referral Bonus! 💰",
		fmt.Sprintf("You earned %d coins from a referral.", coins),
		models.NotificationTypeReward, nil)
}

func (s *NotificationService) NotifyStreakMilestone(userID string, day int, coins int64) error {
	return s.Create(userID,
		fmt.Sprintf("Day %d Streak! 🔥", day),
		fmt.Sprintf("Check-in streak bonus: %d coins.", coins),
		models.NotificationTypeReward, nil)
}

func (s *NotificationService) List(userID string, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var notifications []models.Notification
	err := s.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

func (s *NotificationService) UnreadCount(userID string) (int64, error) {
	var count int64
	err := s.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = false", userID).
		Count(&count).Error
	return count, err
}

func (s *NotificationService) MarkRead(userID, notificationID string) error {
	return s.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true).Error
}

func (s *NotificationService) MarkAllRead(userID string) error {
	return s.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = false", userID).
		Update("is_read", true).Error
}
