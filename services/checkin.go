// services/checkin.go
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

// CheckinService runs the daily check-in streak. One claim per calendar day;
// consecutive days grow the streak and the reward, a missed day resets both.
// Day boundaries are date-string comparisons, so everything rolls over at
// local midnight.
type CheckinService struct {
	DB            *gorm.DB
	Ledger        *LedgerService
	RateWindows   *RateWindowService
	Risk          *RiskService
	Notifications *NotificationService
	Clock         Clock

	Base      int64
	Increment int64
	CapDays   int
}

func NewCheckinService(db *gorm.DB, ledger *LedgerService, rateWindows *RateWindowService, risk *RiskService, notifications *NotificationService, clock Clock, base, increment int64, capDays int) *CheckinService {
	return &CheckinService{
		DB:            db,
		Ledger:        ledger,
		RateWindows:   rateWindows,
		Risk:          risk,
		Notifications: notifications,
		Clock:         clock,
		Base:          base,
		Increment:     increment,
		CapDays:       capDays,
	}
}

// rewardFor returns the coin reward for the given (1-based) streak day. The
// reward grows linearly and plateaus at CapDays.
func (s *CheckinService) rewardFor(streakDay int) int64 {
	step := streakDay - 1
	if step > s.CapDays-1 {
		step = s.CapDays - 1
	}
	if step < 0 {
		step = 0
	}
	return s.Base + int64(step)*s.Increment
}

// lockStats upserts and row-locks the user's stats inside tx.
func lockStats(tx *gorm.DB, userID string) (*models.UserStats, error) {
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.UserStats{UserID: userID}).Error; err != nil {
		return nil, err
	}
	var stats models.UserStats
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&stats, "user_id = ?", userID).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// CheckinResult is returned from a successful claim.
type CheckinResult struct {
	TransactionID string `json:"transaction_id"`
	Streak        int    `json:"streak"`
	Reward        int64  `json:"reward"`
}

// Claim performs today's check-in. Streak math and the credit commit in one
// transaction on the locked stats row, so two concurrent claims cannot both
// pass the same-day guard.
func (s *CheckinService) Claim(userID, deviceID string) (*CheckinResult, error) {
	assessment, err := s.Risk.Assess(userID, deviceID, models.ActionDailyCheckin)
	if err != nil {
		return nil, err
	}
	if !assessment.Allowed {
		return nil, DeniedWithScore(assessment.Reason, assessment.RiskScore)
	}

	var result CheckinResult
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		stats, err := lockStats(tx, userID)
		if err != nil {
			return err
		}

		now := s.Clock.Now()
		today := DayKey(now)
		if stats.LastCheckInDate == today {
			return Denied("Already checked in today")
		}

		yesterday := DayKey(now.AddDate(0, 0, -1))
		streak := 1
		if stats.LastCheckInDate == yesterday {
			streak = stats.CurrentStreak + 1
		}
		reward := s.rewardFor(streak)

		txnID, err := s.Ledger.CreditTx(tx, userID, reward, models.TxTypeDailyCheckin,
			fmt.Sprintf("Daily check-in (day %d)", streak),
			models.JSONMap{"streak": streak})
		if err != nil {
			return err
		}

		stats.CurrentStreak = streak
		stats.LastCheckInDate = today
		if err := tx.Save(stats).Error; err != nil {
			return err
		}

		window, err := s.RateWindows.Acquire(tx, userID, models.ActionDailyCheckin)
		if err != nil {
			return err
		}
		if err := s.RateWindows.Record(tx, window); err != nil {
			return err
		}

		result = CheckinResult{TransactionID: txnID, Streak: streak, Reward: reward}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Streak == s.CapDays {
		if err := s.Notifications.NotifyStreakMilestone(userID, result.Streak, result.Reward); err != nil {
			log.Printf("⚠️ [CHECKIN] failed to queue milestone notification: %v", err)
		}
	}

	log.Printf("📅 [CHECKIN] user=%s streak=%d reward=%d", userID, result.Streak, result.Reward)
	return &result, nil
}

// StreakDay is one slot in the 7-day streak strip. Exactly one slot is
// neither claimed nor locked: today's claimable position.
type StreakDay struct {
	Day     int   `json:"day"`
	Reward  int64 `json:"reward"`
	Claimed bool  `json:"claimed"`
	Locked  bool  `json:"locked"`
}

// CheckinStatus is the check-in screen payload: where the streak stands and
// what today's claim is worth.
type CheckinStatus struct {
	CheckedInToday bool        `json:"checked_in_today"`
	CurrentStreak  int         `json:"current_streak"`
	NextReward     int64       `json:"next_reward"`
	Days           []StreakDay `json:"days"`
}

// Status reports the user's streak without mutating anything. A streak broken
// by a missed day already reads as zero here, even before the next claim.
func (s *CheckinService) Status(userID string) (*CheckinStatus, error) {
	var stats models.UserStats
	err := s.DB.First(&stats, "user_id = ?", userID).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := s.Clock.Now()
	today := DayKey(now)
	yesterday := DayKey(now.AddDate(0, 0, -1))

	status := CheckinStatus{
		CheckedInToday: stats.LastCheckInDate == today,
	}
	switch stats.LastCheckInDate {
	case today, yesterday:
		status.CurrentStreak = stats.CurrentStreak
	default:
		status.CurrentStreak = 0
	}

	status.NextReward = s.rewardFor(status.CurrentStreak + 1)
	for day := 1; day <= s.CapDays; day++ {
		status.Days = append(status.Days, StreakDay{
			Day:     day,
			Reward:  s.rewardFor(day),
			Claimed: day <= status.CurrentStreak,
			Locked:  day > status.CurrentStreak+1,
		})
	}
	return &status, nil
}

// CalendarDay marks one recent day for the check-in calendar view.
type CalendarDay struct {
	Date      string `json:"date"`
	CheckedIn bool   `json:"checked_in"`
	Reward    int64  `json:"reward,omitempty"`
}

// Calendar reconstructs the last `days` days from the ledger.
func (s *CheckinService) Calendar(userID string, days int) ([]CalendarDay, error) {
	if days <= 0 || days > 31 {
		days = 7
	}
	now := s.Clock.Now()
	since := now.AddDate(0, 0, -(days - 1))
	start := time.Date(since.Year(), since.Month(), since.Day(), 0, 0, 0, 0, since.Location())

	var records []models.Transaction
	err := s.DB.Where("user_id = ? AND type = ? AND created_at >= ?",
		userID, models.TxTypeDailyCheckin, start).
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]int64, len(records))
	for _, r := range records {
		byDay[DayKey(r.CreatedAt)] = r.Amount
	}

	calendar := make([]CalendarDay, 0, days)
	for i := days - 1; i >= 0; i-- {
		key := DayKey(now.AddDate(0, 0, -i))
		reward, ok := byDay[key]
		calendar = append(calendar, CalendarDay{Date: key, CheckedIn: ok, Reward: reward})
	}
	return calendar, nil
}
