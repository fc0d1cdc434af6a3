// services/risk.go
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

// Risk scoring weights. Individual signals are moderate on purpose: the
// aggregate has to compound several of them before an action is blocked.
const (
	riskScoreNewAccount    = 20 // account younger than one day
	riskScorePerWarning    = 15
	riskScoreAnonymous     = 30 // guest identity
	riskScoreNoEmail       = 10
	riskScoreMissingDevice = 10 // client sent no fingerprint

	riskDenyThreshold = 80
	hardWarningLimit  = 3 // warnings at which the account is flagged outright
)

// RiskAssessment is computed fresh for every action and never cached.
type RiskAssessment struct {
	Allowed   bool   `json:"allowed"`
	Reason    string `json:"reason,omitempty"`
	RiskScore int    `json:"risk_score"`
}

// RiskService composes independent fraud signals (device linkage, hourly
// rate, account profile) into an allow/deny decision. Checks run cheapest
// first and short-circuit on a hard block, but passing scores still aggregate
// so that several moderate signals compound into a denial.
type RiskService struct {
	DB          *gorm.DB
	RateWindows *RateWindowService
	Clock       Clock

	MaxDevices       int
	RateLimitPerHour int
}

func NewRiskService(db *gorm.DB, rateWindows *RateWindowService, clock Clock, maxDevices, rateLimitPerHour int) *RiskService {
	return &RiskService{
		DB:               db,
		RateWindows:      rateWindows,
		Clock:            clock,
		MaxDevices:       maxDevices,
		RateLimitPerHour: rateLimitPerHour,
	}
}

// RegisterDevice upserts the (user, device) link and refreshes last-seen.
func (s *RiskService) RegisterDevice(userID, deviceID, userAgent string) error {
	device := models.UserDevice{
		ID:         fmt.Sprintf("%s_%s", userID, deviceID),
		UserID:     userID,
		DeviceID:   deviceID,
		UserAgent:  userAgent,
		LastSeenAt: s.Clock.Now(),
	}
	return s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_agent", "last_seen_at", "updated_at"}),
	}).Create(&device).Error
}

// checkDevice denies when the fingerprint is shared by too many other
// accounts. A missing fingerprint is allowed but scored.
func (s *RiskService) checkDevice(userID, deviceID string) (*RiskAssessment, error) {
	if deviceID == "" {
		return &RiskAssessment{Allowed: true, RiskScore: riskScoreMissingDevice}, nil
	}

	var otherUsers int64
	err := s.DB.Model(&models.UserDevice{}).
		Where("device_id = ? AND user_id <> ?", deviceID, userID).
		Distinct("user_id").
		Count(&otherUsers).Error
	if err != nil {
		return nil, err
	}

	if otherUsers >= int64(s.MaxDevices) {
		return &RiskAssessment{
			Allowed:   false,
			Reason:    "This device is already linked to the maximum allowed accounts",
			RiskScore: 100,
		}, nil
	}

	if err := s.RegisterDevice(userID, deviceID, ""); err != nil {
		return nil, err
	}
	return &RiskAssessment{Allowed: true}, nil
}

// checkRate denies when the user performed more than the hourly cap of this
// action in the trailing hour.
func (s *RiskService) checkRate(userID string, action models.RewardAction) (*RiskAssessment, error) {
	count, err := s.RateWindows.CountSince(userID, action, s.Clock.Now().Add(-time.Hour))
	if err != nil {
		return nil, err
	}
	if count >= s.RateLimitPerHour {
		return &RiskAssessment{
			Allowed:   false,
			Reason:    fmt.Sprintf("Rate limit exceeded for %s. Try again later.", action),
			RiskScore: 70,
		}, nil
	}
	return &RiskAssessment{Allowed: true}, nil
}

// suspicionScore is the additive profile heuristic: new account, prior
// warnings, guest identity, missing email.
func suspicionScore(user *models.User, now time.Time) int {
	score := 0
	if now.Sub(user.CreatedAt) < 24*time.Hour {
		score += riskScoreNewAccount
	}
	score += user.WarningCount * riskScorePerWarning
	if user.IsAnonymous {
		score += riskScoreAnonymous
	}
	if user.Email == "" {
		score += riskScoreNoEmail
	}
	return score
}

// Assess runs the full fraud check for one action. Hard blocks short-circuit;
// otherwise the three partial scores are summed (capped at 100) and a total
// at or above the threshold records a warning and denies.
func (s *RiskService) Assess(userID, deviceID string, action models.RewardAction) (*RiskAssessment, error) {
	var user models.User
	err := s.DB.First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &RiskAssessment{Allowed: false, Reason: "User not found", RiskScore: 100}, nil
	}
	if err != nil {
		return nil, err
	}

	if user.IsBanned {
		return &RiskAssessment{Allowed: false, Reason: "Account suspended", RiskScore: 100}, nil
	}

	deviceCheck, err := s.checkDevice(userID, deviceID)
	if err != nil {
		return nil, err
	}
	if !deviceCheck.Allowed {
		return deviceCheck, nil
	}

	rateCheck, err := s.checkRate(userID, action)
	if err != nil {
		return nil, err
	}
	if !rateCheck.Allowed {
		return rateCheck, nil
	}

	if user.WarningCount >= hardWarningLimit {
		return &RiskAssessment{
			Allowed:   false,
			Reason:    "Account flagged for suspicious activity",
			RiskScore: 100,
		}, nil
	}

	total := deviceCheck.RiskScore + rateCheck.RiskScore + suspicionScore(&user, s.Clock.Now())
	if total > 100 {
		total = 100
	}

	if total >= riskDenyThreshold {
		if err := s.RecordWarning(userID, fmt.Sprintf("High risk score: %d", total)); err != nil {
			return nil, err
		}
		return &RiskAssessment{
			Allowed:   false,
			Reason:    "Activity blocked due to security concerns",
			RiskScore: total,
		}, nil
	}

	return &RiskAssessment{Allowed: true, RiskScore: total}, nil
}

// RecordWarning persists a strike against the account.
func (s *RiskService) RecordWarning(userID, reason string) error {
	log.Printf("⚠️ [RISK] warning issued: user=%s reason=%s", userID, reason)
	return s.DB.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("warning_count", gorm.Expr("warning_count + 1")).Error
}

// ValidateWithdrawal layers cash-out rules on top of the general assessment:
// accounts must be at least 24 hours old and carry a verified (non-guest)
// identity.
func (s *RiskService) ValidateWithdrawal(userID, deviceID string, amount int64) (*RiskAssessment, error) {
	assessment, err := s.Assess(userID, deviceID, models.ActionWithdrawal)
	if err != nil {
		return nil, err
	}
	if !assessment.Allowed {
		return assessment, nil
	}

	var user models.User
	if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}

	if s.Clock.Now().Sub(user.CreatedAt) < 24*time.Hour {
		return &RiskAssessment{
			Allowed:   false,
			Reason:    "Account must be at least 24 hours old to withdraw",
			RiskScore: 50,
		}, nil
	}
	if user.IsAnonymous {
		return &RiskAssessment{
			Allowed:   false,
			Reason:    "Please sign in with Google to withdraw",
			RiskScore: 60,
		}, nil
	}

	if amount > 10000 {
		log.Printf("🔍 [RISK] large withdrawal flagged for review: user=%s amount=%d", userID, amount)
	}

	return assessment, nil
}
