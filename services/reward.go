// services/reward.go
package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/rajnidolly853-ship-it/smartearn-pro/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RewardService runs the grant pipeline for rewarded actions: risk check,
// then eligibility gates and the ledger credit inside one DB transaction on
// the locked rate-window row. A failed credit rolls the whole thing back, so
// quota is never consumed without coins being paid.
type RewardService struct {
	DB            *gorm.DB
	Ledger        *LedgerService
	RateWindows   *RateWindowService
	Risk          *RiskService
	Referrals     *ReferralService
	Notifications *NotificationService
	Clock         Clock

	AdReward     int64
	AdCooldown   time.Duration
	DailyAdLimit int
}

func NewRewardService(db *gorm.DB, ledger *LedgerService, rateWindows *RateWindowService, risk *RiskService, referrals *ReferralService, notifications *NotificationService, clock Clock, adReward int64, adCooldown time.Duration, dailyAdLimit int) *RewardService {
	return &RewardService{
		DB:            db,
		Ledger:        ledger,
		RateWindows:   rateWindows,
		Risk:          risk,
		Referrals:     referrals,
		Notifications: notifications,
		Clock:         clock,
		AdReward:      adReward,
		AdCooldown:    adCooldown,
		DailyAdLimit:  dailyAdLimit,
	}
}

// bumpStat upserts the user's stats row and increments one counter column.
func bumpStat(tx *gorm.DB, userID, column string, delta int) error {
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.UserStats{UserID: userID}).Error; err != nil {
		return err
	}
	return tx.Model(&models.UserStats{}).
		Where("user_id = ?", userID).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta)).Error
}

// GrantResult is what a successful grant returns to the client.
type GrantResult struct {
	TransactionID  string `json:"transaction_id"`
	Amount         int64  `json:"amount"`
	Pending        bool   `json:"pending,omitempty"`
	RemainingToday int    `json:"remaining_today"`
}

// GrantAdReward credits the fixed per-ad reward. Gates, in order: risk
// assessment, per-ad cooldown, daily ad cap. Gate state and the credit commit
// together.
func (s *RewardService) GrantAdReward(userID, deviceID string) (*GrantResult, error) {
	assessment, err := s.Risk.Assess(userID, deviceID, models.ActionWatchAd)
	if err != nil {
		return nil, err
	}
	if !assessment.Allowed {
		return nil, DeniedWithScore(assessment.Reason, assessment.RiskScore)
	}

	result := GrantResult{Amount: s.AdReward}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		window, err := s.RateWindows.Acquire(tx, userID, models.ActionWatchAd)
		if err != nil {
			return err
		}

		if since, ok := s.RateWindows.SinceLast(window); ok && since < s.AdCooldown {
			wait := int((s.AdCooldown - since).Seconds()) + 1
			return Denied(fmt.Sprintf("Please wait %d seconds before the next ad", wait))
		}
		if s.RateWindows.TodayCount(window) >= s.DailyAdLimit {
			return Denied(fmt.Sprintf("Daily limit of %d ads reached", s.DailyAdLimit))
		}

		txnID, err := s.Ledger.CreditTx(tx, userID, s.AdReward,
			models.TxTypeWatchAd, "Watched rewarded ad", nil)
		if err != nil {
			return err
		}
		result.TransactionID = txnID

		if err := s.RateWindows.Record(tx, window); err != nil {
			return err
		}
		result.RemainingToday = s.DailyAdLimit - s.RateWindows.TodayCount(window)
		return bumpStat(tx, userID, "ads_watched", 1)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("🎬 [REWARD] ad reward granted: user=%s amount=%d remaining=%d",
		userID, result.Amount, result.RemainingToday)
	return &result, nil
}

// CompleteTask credits an offerwall task. Offers flagged for review credit
// pendingCoins instead of spendable coins; either way the completion counts as
// the referee's qualifying earn for the referral bonus.
func (s *RewardService) CompleteTask(userID, deviceID, offerSlug string) (*GrantResult, error) {
	var offer models.TaskOffer
	err := s.DB.First(&offer, "slug = ? AND is_active = true", offerSlug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOfferNotFound
	}
	if err != nil {
		return nil, err
	}

	assessment, err := s.Risk.Assess(userID, deviceID, models.ActionTaskOffer)
	if err != nil {
		return nil, err
	}
	if !assessment.Allowed {
		return nil, DeniedWithScore(assessment.Reason, assessment.RiskScore)
	}

	result := GrantResult{Amount: offer.Reward, Pending: offer.RequiresReview}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		window, err := s.RateWindows.Acquire(tx, userID, models.ActionTaskOffer)
		if err != nil {
			return err
		}

		// one completion per offer per user
		var done int64
		if err := tx.Model(&models.Transaction{}).
			Where("user_id = ? AND type = ? AND metadata->>'offer_id' = ?",
				userID, models.TxTypeTaskOffer, offer.ID).
			Count(&done).Error; err != nil {
			return err
		}
		if done > 0 {
			return Denied("Task already completed")
		}

		meta := models.JSONMap{"offer_id": offer.ID, "network": offer.Network}
		description := fmt.Sprintf("Completed task: %s", offer.Title)
		var txnID string
		if offer.RequiresReview {
			txnID, err = s.Ledger.CreditPendingTx(tx, userID, offer.Reward,
				models.TxTypeTaskOffer, description, meta)
		} else {
			txnID, err = s.Ledger.CreditTx(tx, userID, offer.Reward,
				models.TxTypeTaskOffer, description, meta)
		}
		if err != nil {
			return err
		}
		result.TransactionID = txnID

		if err := s.RateWindows.Record(tx, window); err != nil {
			return err
		}
		return bumpStat(tx, userID, "tasks_completed", 1)
	})
	if err != nil {
		return nil, err
	}

	s.settleReferral(userID)
	log.Printf("✅ [REWARD] task completed: user=%s offer=%s amount=%d pending=%v",
		userID, offer.Slug, offer.Reward, result.Pending)
	return &result, nil
}

// settleReferral pays the one-time referral bonus after the user's first
// qualifying earn. Best effort: the grant already committed, a payout failure
// here is retried on the next earn because BonusPaid never flipped.
func (s *RewardService) settleReferral(userID string) {
	err := s.Referrals.PayBonus(userID)
	if err == nil || errors.Is(err, ErrReferralNotFound) || errors.Is(err, ErrAlreadyProcessed) {
		return
	}
	log.Printf("⚠️ [REWARD] referral payout failed for user=%s: %v", userID, err)
}

// EarningStatus is the home-screen summary of what the user can still earn
// today.
type EarningStatus struct {
	AdsWatchedToday int   `json:"ads_watched_today"`
	AdsRemaining    int   `json:"ads_remaining"`
	AdCooldownSecs  int   `json:"ad_cooldown_secs"`
	AdReward        int64 `json:"ad_reward"`
	SpinsUsedToday  int   `json:"spins_used_today"`
	CheckedInToday  bool  `json:"checked_in_today"`
}

// Status reports today's usage against the configured caps. Read-only.
func (s *RewardService) Status(userID string) (*EarningStatus, error) {
	status := EarningStatus{AdReward: s.AdReward}

	adsToday, err := s.RateWindows.DayCountFor(userID, models.ActionWatchAd)
	if err != nil {
		return nil, err
	}
	status.AdsWatchedToday = adsToday
	status.AdsRemaining = s.DailyAdLimit - adsToday
	if status.AdsRemaining < 0 {
		status.AdsRemaining = 0
	}

	if since, ok, err := s.RateWindows.TimeSinceLast(userID, models.ActionWatchAd); err != nil {
		return nil, err
	} else if ok && since < s.AdCooldown {
		status.AdCooldownSecs = int((s.AdCooldown - since).Seconds()) + 1
	}

	spinsToday, err := s.RateWindows.DayCountFor(userID, models.ActionSpinWheel)
	if err != nil {
		return nil, err
	}
	status.SpinsUsedToday = spinsToday

	var stats models.UserStats
	err = s.DB.First(&stats, "user_id = ?", userID).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	status.CheckedInToday = stats.LastCheckInDate == DayKey(s.Clock.Now())

	return &status, nil
}

// Offers lists the active task catalog.
func (s *RewardService) Offers() ([]models.TaskOffer, error) {
	var offers []models.TaskOffer
	err := s.DB.Where("is_active = true").Order("reward DESC").Find(&offers).Error
	return offers, err
}
