// services/user.go
package services

import (
	"errors"

	"github.com/rajnidolly853-ship-it/smartearn-pro/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserService mirrors the upstream identity into the local users table. The
// gateway authenticates; we only persist the profile fields the risk engine
// and referral ledger read.
type UserService struct {
	DB        *gorm.DB
	Referrals *ReferralService
	Clock     Clock
}

func NewUserService(db *gorm.DB, referrals *ReferralService, clock Clock) *UserService {
	return &UserService{DB: db, Referrals: referrals, Clock: clock}
}

// ProfileInput is what the gateway forwards on login/refresh.
type ProfileInput struct {
	DisplayName  string `json:"display_name"`
	Email        string `json:"email"`
	PhotoURL     string `json:"photo_url"`
	IsAnonymous  bool   `json:"is_anonymous"`
	ReferralCode string `json:"referral_code,omitempty"` // invite code entered at signup
}

// Sync upserts the profile and stamps last-active. New accounts that arrive
// with an invite code get bound to their referrer; a bad code does not fail
// the sync.
func (s *UserService) Sync(userID string, in ProfileInput) (*models.User, error) {
	now := s.Clock.Now()
	user := models.User{
		ID:           userID,
		DisplayName:  in.DisplayName,
		Email:        in.Email,
		PhotoURL:     in.PhotoURL,
		IsAnonymous:  in.IsAnonymous,
		LastActiveAt: &now,
	}
	err := s.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"display_name", "email", "photo_url", "is_anonymous",
			"last_active_at", "updated_at",
		}),
	}).Create(&user).Error
	if err != nil {
		return nil, err
	}

	if in.ReferralCode != "" {
		if link, err := s.Referrals.Apply(userID, in.ReferralCode); err == nil {
			s.DB.Model(&models.User{}).
				Where("id = ?", userID).
				Update("referred_by", link.ReferrerID)
		}
	}

	if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Get loads one user.
func (s *UserService) Get(userID string) (*models.User, error) {
	var user models.User
	err := s.DB.First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Touch stamps last-active without rewriting the profile.
func (s *UserService) Touch(userID string) {
	s.DB.Model(&models.User{}).
		Where("id = ?", userID).
		Update("last_active_at", s.Clock.Now())
}
