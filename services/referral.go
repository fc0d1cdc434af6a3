// services/referral.go
package services

import (
	"errors"
	"fmt"
	"log"
	"math/rand"

	"github.com/rajnidolly853-ship-it/smartearn-pro/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Code alphabet excludes look-alikes (0/O, 1/I) so codes survive being read
// aloud or typed from a screenshot.
const (
	referralCodeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	referralCodeLength  = 6
)

// ReferralService owns invite codes, the referrer/referee link table and the
// one-time bonus payout. A referee is bound to at most one referrer, forever;
// the bonus pays exactly once, on the referee's first qualifying earn.
type ReferralService struct {
	DB            *gorm.DB
	Ledger        *LedgerService
	Notifications *NotificationService
	Clock         Clock

	BonusReferrer int64
	BonusReferee  int64
}

func NewReferralService(db *gorm.DB, ledger *LedgerService, notifications *NotificationService, clock Clock, bonusReferrer, bonusReferee int64) *ReferralService {
	return &ReferralService{
		DB:            db,
		Ledger:        ledger,
		Notifications: notifications,
		Clock:         clock,
		BonusReferrer: bonusReferrer,
		BonusReferee:  bonusReferee,
	}
}

func randomReferralCode() string {
	code := make([]byte, referralCodeLength)
	for i := range code {
		code[i] = referralCodeCharset[rand.Intn(len(referralCodeCharset))]
	}
	return string(code)
}

// EnsureCode returns the user's invite code, generating and persisting one on
// first use. Retries on the (unlikely) collision with another user's code.
func (s *ReferralService) EnsureCode(userID string) (string, error) {
	var user models.User
	err := s.DB.First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", err
	}
	if user.ReferralCode != "" {
		return user.ReferralCode, nil
	}

	for attempt := 0; attempt < 10; attempt++ {
		code := randomReferralCode()
		res := s.DB.Model(&models.User{}).
			Where("id = ? AND (referral_code IS NULL OR referral_code = '')", userID).
			Update("referral_code", code)
		if res.Error == nil && res.RowsAffected == 1 {
			return code, nil
		}
		if res.Error == nil {
			// someone else assigned a code concurrently; read it back
			if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
				return "", err
			}
			return user.ReferralCode, nil
		}
		// unique violation on referral_code: try another
	}
	return "", fmt.Errorf("could not generate a unique referral code for user %s", userID)
}

// Apply binds a new user to the owner of the given code. First write wins:
// a referee that already has a link keeps it, self-referral is rejected.
func (s *ReferralService) Apply(refereeID, code string) (*models.ReferralLink, error) {
	var referrer models.User
	err := s.DB.First(&referrer, "referral_code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, Denied("Invalid referral code")
	}
	if err != nil {
		return nil, err
	}
	if referrer.ID == refereeID {
		return nil, Denied("You cannot use your own referral code")
	}

	var existing models.ReferralLink
	err = s.DB.First(&existing, "referee_id = ?", refereeID).Error
	if err == nil {
		return nil, Denied("A referral code was already applied to this account")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	link := models.ReferralLink{
		ID:         uuid.NewString(),
		ReferrerID: referrer.ID,
		RefereeID:  refereeID,
		Status:     models.ReferralStatusPending,
	}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&link).Error; err != nil {
			return err
		}
		return bumpStat(tx, referrer.ID, "referral_count", 1)
	})
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// PayBonus activates the referee's link and pays both sides, exactly once.
// Called by the reward engine after the referee's first qualifying earn.
// Returns ErrReferralNotFound when the user was not referred and
// ErrAlreadyProcessed when the bonus is already out the door.
func (s *ReferralService) PayBonus(refereeID string) error {
	var link models.ReferralLink
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&link, "referee_id = ?", refereeID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReferralNotFound
		}
		if err != nil {
			return err
		}
		if link.BonusPaid {
			return ErrAlreadyProcessed
		}

		meta := models.JSONMap{"referral_id": link.ID}
		if _, err := s.Ledger.CreditTx(tx, link.ReferrerID, s.BonusReferrer,
			models.TxTypeReferralBonus, "Referral bonus: friend started earning", meta); err != nil {
			return err
		}
		if _, err := s.Ledger.CreditTx(tx, refereeID, s.BonusReferee,
			models.TxTypeReferralBonus, "Welcome bonus: referral code applied", meta); err != nil {
			return err
		}

		now := s.Clock.Now()
		return tx.Model(&link).Updates(map[string]interface{}{
			"status":        models.ReferralStatusActive,
			"bonus_paid":    true,
			"bonus_paid_at": &now,
		}).Error
	})
	if err != nil {
		return err
	}

	if err := s.Notifications.NotifyReferralBonus(link.ReferrerID, s.BonusReferrer); err != nil {
		log.Printf("⚠️ [REFERRAL] failed to queue referrer notification: %v", err)
	}
	if err := s.Notifications.NotifyReferralBonus(refereeID, s.BonusReferee); err != nil {
		log.Printf("⚠️ [REFERRAL] failed to queue referee notification: %v", err)
	}
	log.Printf("💰 [REFERRAL] bonus paid: referrer=%s referee=%s", link.ReferrerID, refereeID)
	return nil
}

// ReferralSummary is the invite-screen payload.
type ReferralSummary struct {
	Code        string                `json:"code"`
	Total       int64                 `json:"total"`
	Active      int64                 `json:"active"`
	Pending     int64                 `json:"pending"`
	CoinsEarned int64                 `json:"coins_earned"`
	Recent      []models.ReferralLink `json:"recent"`
}

// Summary aggregates a referrer's invite performance.
func (s *ReferralService) Summary(userID string) (*ReferralSummary, error) {
	code, err := s.EnsureCode(userID)
	if err != nil {
		return nil, err
	}

	summary := ReferralSummary{Code: code}
	if err := s.DB.Model(&models.ReferralLink{}).
		Where("referrer_id = ?", userID).Count(&summary.Total).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.ReferralLink{}).
		Where("referrer_id = ? AND status = ?", userID, models.ReferralStatusActive).
		Count(&summary.Active).Error; err != nil {
		return nil, err
	}
	summary.Pending = summary.Total - summary.Active
	summary.CoinsEarned = summary.Active * s.BonusReferrer

	err = s.DB.Where("referrer_id = ?", userID).
		Order("created_at DESC").
		Limit(10).
		Find(&summary.Recent).Error
	if err != nil {
		return nil, err
	}
	return &summary, nil
}
