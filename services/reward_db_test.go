package services_test

import (
	"testing"
	"time"

	"github.com/rajnidolly853-ship-it/smartearn-pro/models"
	"github.com/rajnidolly853-ship-it/smartearn-pro/services"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time { return c.t }

func newEarningStack(db *gorm.DB, clock services.Clock) (*services.RewardService, *services.CheckinService, *services.LedgerService) {
	ledger := services.NewLedgerService(db)
	rateWindows := services.NewRateWindowService(db, clock)
	risk := services.NewRiskService(db, rateWindows, clock, 2, 100)
	notifications := services.NewNotificationService(db)
	referrals := services.NewReferralService(db, ledger, notifications, clock, 50, 25)
	rewards := services.NewRewardService(db, ledger, rateWindows, risk, referrals, notifications, clock,
		10, 0, 2) // no cooldown, cap of 2 ads per day
	checkins := services.NewCheckinService(db, ledger, rateWindows, risk, notifications, clock, 5, 5, 7)
	return rewards, checkins, ledger
}

func TestAdRewardDailyCap(t *testing.T) {
	db := setupTestDB(t)
	clock := &testClock{time.Now()}
	rewards, _, ledger := newEarningStack(db, clock)
	userID := createTestUser(t, db)

	for i := 0; i < 2; i++ {
		result, err := rewards.GrantAdReward(userID, "")
		if err != nil {
			t.Fatalf("grant %d failed: %v", i+1, err)
		}
		if result.Amount != 10 {
			t.Errorf("grant %d amount = %d, want 10", i+1, result.Amount)
		}
	}

	_, err := rewards.GrantAdReward(userID, "")
	if !services.IsDenied(err) {
		t.Fatalf("third grant: expected daily-cap denial, got %v", err)
	}

	wallet, _ := ledger.Balance(userID)
	if wallet.Coins != 20 {
		t.Errorf("coins = %d, want 20 (denied grant must not credit)", wallet.Coins)
	}

	// next day the cap resets
	clock.t = clock.t.Add(24 * time.Hour)
	if _, err := rewards.GrantAdReward(userID, ""); err != nil {
		t.Fatalf("grant after day rollover failed: %v", err)
	}
}

func TestCheckinStreak(t *testing.T) {
	db := setupTestDB(t)
	clock := &testClock{time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)}
	_, checkins, _ := newEarningStack(db, clock)
	userID := createTestUser(t, db)

	result, err := checkins.Claim(userID, "")
	if err != nil {
		t.Fatalf("first claim failed: %v", err)
	}
	if result.Streak != 1 || result.Reward != 5 {
		t.Errorf("day 1: streak=%d reward=%d, want 1/5", result.Streak, result.Reward)
	}

	// same day again is refused
	if _, err := checkins.Claim(userID, ""); !services.IsDenied(err) {
		t.Fatalf("same-day claim: expected denial, got %v", err)
	}

	// next day extends the streak
	clock.t = clock.t.Add(24 * time.Hour)
	result, err = checkins.Claim(userID, "")
	if err != nil {
		t.Fatalf("second claim failed: %v", err)
	}
	if result.Streak != 2 || result.Reward != 10 {
		t.Errorf("day 2: streak=%d reward=%d, want 2/10", result.Streak, result.Reward)
	}

	// skipping a day resets to 1
	clock.t = clock.t.Add(48 * time.Hour)
	result, err = checkins.Claim(userID, "")
	if err != nil {
		t.Fatalf("claim after gap failed: %v", err)
	}
	if result.Streak != 1 || result.Reward != 5 {
		t.Errorf("after gap: streak=%d reward=%d, want 1/5", result.Streak, result.Reward)
	}
}

func TestTaskCompletionOncePerOffer(t *testing.T) {
	db := setupTestDB(t)
	clock := &testClock{time.Now()}
	rewards, _, ledger := newEarningStack(db, clock)
	userID := createTestUser(t, db)

	offer := models.TaskOffer{
		ID:       uuid.NewString(),
		Slug:     "install-app-" + uuid.NewString()[:8],
		Title:    "Install App",
		Reward:   100,
		IsActive: true,
	}
	if err := db.Create(&offer).Error; err != nil {
		t.Fatalf("failed to create offer: %v", err)
	}

	result, err := rewards.CompleteTask(userID, "", offer.Slug)
	if err != nil {
		t.Fatalf("CompleteTask failed: %v", err)
	}
	if result.Amount != 100 || result.Pending {
		t.Errorf("completion: amount=%d pending=%v, want 100/false", result.Amount, result.Pending)
	}

	if _, err := rewards.CompleteTask(userID, "", offer.Slug); !services.IsDenied(err) {
		t.Errorf("repeat completion: expected denial, got %v", err)
	}

	wallet, _ := ledger.Balance(userID)
	if wallet.Coins != 100 {
		t.Errorf("coins = %d, want 100", wallet.Coins)
	}
}
