// services/rate_window.go
package services

import (
	"time"

	"github.com/rajnidolly853-ship-it/smartearn-pro/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// rollingWindow bounds the timestamp list kept per (user, action); the hourly
// rate limit only ever looks one hour back.
const rollingWindow = time.Hour

// RateWindowService tracks time-windowed counters per (user, action):
// cooldowns, the trailing-hour rate limit, and calendar-day caps. The write
// that gates a grant happens on a row locked inside the same DB transaction
// as the credit, so concurrent requests cannot race past a cap.
type RateWindowService struct {
	DB    *gorm.DB
	Clock Clock
}

func NewRateWindowService(db *gorm.DB, clock Clock) *RateWindowService {
	return &RateWindowService{DB: db, Clock: clock}
}

// pruneBefore drops timestamps older than cutoff (unix millis), preserving order.
func pruneBefore(ts models.Int64List, cutoff int64) models.Int64List {
	kept := ts[:0]
	for _, t := range ts {
		if t > cutoff {
			kept = append(kept, t)
		}
	}
	return kept
}

// Acquire loads the (user, action) window row locked FOR UPDATE, creating it
// on first use. Callers gate and record against the locked row, then commit.
func (s *RateWindowService) Acquire(tx *gorm.DB, userID string, action models.RewardAction) (*models.RateWindow, error) {
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.RateWindow{UserID: userID, Action: action}).Error; err != nil {
		return nil, err
	}
	var window models.RateWindow
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&window, "user_id = ? AND action = ?", userID, action).Error
	if err != nil {
		return nil, err
	}
	return &window, nil
}

// HourCount returns how many actions fall inside the trailing hour.
func (s *RateWindowService) HourCount(window *models.RateWindow) int {
	cutoff := s.Clock.Now().Add(-rollingWindow).UnixMilli()
	n := 0
	for _, t := range window.Timestamps {
		if t > cutoff {
			n++
		}
	}
	return n
}

// SinceLast returns the elapsed time since the last action, and whether one
// was recorded at all.
func (s *RateWindowService) SinceLast(window *models.RateWindow) (time.Duration, bool) {
	if window.LastActionAt == nil {
		return 0, false
	}
	return s.Clock.Now().Sub(*window.LastActionAt), true
}

// TodayCount returns the calendar-day counter, which reads as zero whenever
// the stored day key differs from today's date string.
func (s *RateWindowService) TodayCount(window *models.RateWindow) int {
	if window.DayKey != DayKey(s.Clock.Now()) {
		return 0
	}
	return window.DayCount
}

// Record stamps one action onto the locked row: prunes and appends the
// rolling-hour list, advances the day counter (resetting it across a day
// boundary), and updates the cooldown timestamp.
func (s *RateWindowService) Record(tx *gorm.DB, window *models.RateWindow) error {
	now := s.Clock.Now()
	cutoff := now.Add(-rollingWindow).UnixMilli()

	window.Timestamps = append(pruneBefore(window.Timestamps, cutoff), now.UnixMilli())
	window.LastActionAt = &now

	today := DayKey(now)
	if window.DayKey != today {
		window.DayKey = today
		window.DayCount = 0
	}
	window.DayCount++

	return tx.Save(window).Error
}

// RecordAction stamps one action in its own transaction. Engines that gate on
// the window use Acquire/Record inside their grant transaction instead.
func (s *RateWindowService) RecordAction(userID string, action models.RewardAction) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		window, err := s.Acquire(tx, userID, action)
		if err != nil {
			return err
		}
		return s.Record(tx, window)
	})
}

// CountSince counts actions recorded after the given time. Read-only; fine
// for display, not for gating.
func (s *RateWindowService) CountSince(userID string, action models.RewardAction, since time.Time) (int, error) {
	window, err := s.peek(userID, action)
	if err != nil {
		return 0, err
	}
	if window == nil {
		return 0, nil
	}
	cutoff := since.UnixMilli()
	n := 0
	for _, t := range window.Timestamps {
		if t > cutoff {
			n++
		}
	}
	return n, nil
}

// TimeSinceLast returns the elapsed time since the user's last action of this
// type; ok is false when the action was never recorded.
func (s *RateWindowService) TimeSinceLast(userID string, action models.RewardAction) (time.Duration, bool, error) {
	window, err := s.peek(userID, action)
	if err != nil {
		return 0, false, err
	}
	if window == nil || window.LastActionAt == nil {
		return 0, false, nil
	}
	return s.Clock.Now().Sub(*window.LastActionAt), true, nil
}

// DayCountFor returns today's calendar-day counter without locking.
func (s *RateWindowService) DayCountFor(userID string, action models.RewardAction) (int, error) {
	window, err := s.peek(userID, action)
	if err != nil {
		return 0, err
	}
	if window == nil {
		return 0, nil
	}
	return s.TodayCount(window), nil
}

func (s *RateWindowService) peek(userID string, action models.RewardAction) (*models.RateWindow, error) {
	var window models.RateWindow
	err := s.DB.First(&window, "user_id = ? AND action = ?", userID, action).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &window, nil
}

// PruneStale trims rolling-hour lists and deletes windows idle longer than
// maxIdle. Run from the maintenance scheduler; purely hygienic, the gating
// reads never trust stale data anyway.
func (s *RateWindowService) PruneStale(maxIdle time.Duration) (int64, error) {
	cutoff := s.Clock.Now().Add(-maxIdle)
	res := s.DB.Where("last_action_at IS NOT NULL AND last_action_at < ?", cutoff).
		Delete(&models.RateWindow{})
	return res.RowsAffected, res.Error
}
