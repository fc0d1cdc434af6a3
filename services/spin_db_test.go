package services_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/rajnidolly853-ship-it/smartearn-pro/models"
	"github.com/rajnidolly853-ship-it/smartearn-pro/services"

	"gorm.io/gorm"
)

func newSpinStack(db *gorm.DB, clock services.Clock, limit int, prizes []int64, probs []float64) (*services.SpinService, *services.LedgerService) {
	ledger := services.NewLedgerService(db)
	rateWindows := services.NewRateWindowService(db, clock)
	risk := services.NewRiskService(db, rateWindows, clock, 2, 100)
	spins := services.NewSpinService(db, ledger, rateWindows, risk, clock, limit, prizes, probs,
		rand.New(rand.NewSource(1)))
	return spins, ledger
}

func TestSpinZeroPrizeConsumesSpin(t *testing.T) {
	db := setupTestDB(t)
	clock := &testClock{time.Now()}
	// a wheel with only a zero-coin segment makes every draw a miss
	spins, ledger := newSpinStack(db, clock, 2, []int64{0}, []float64{1.0})
	userID := createTestUser(t, db)

	for i := 0; i < 2; i++ {
		result, err := spins.Spin(userID, "")
		if err != nil {
			t.Fatalf("spin %d failed: %v", i+1, err)
		}
		if result.Amount != 0 {
			t.Errorf("spin %d amount = %d, want 0", i+1, result.Amount)
		}
		if result.TransactionID == "" {
			t.Errorf("spin %d: zero prize must still write a ledger entry", i+1)
		}
		if result.SpinsLeft != 2-(i+1) {
			t.Errorf("spin %d: spins left = %d, want %d", i+1, result.SpinsLeft, 2-(i+1))
		}
	}

	wallet, _ := ledger.Balance(userID)
	if wallet.Coins != 0 || wallet.TotalEarned != 0 {
		t.Errorf("zero prizes must not credit: coins=%d earned=%d", wallet.Coins, wallet.TotalEarned)
	}

	var records []models.Transaction
	if err := db.Where("user_id = ? AND type = ?", userID, models.TxTypeSpinWheel).Find(&records).Error; err != nil {
		t.Fatalf("failed to load spin transactions: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("ledger has %d spin entries, want 2", len(records))
	}
	for _, r := range records {
		if r.Amount != 0 || r.Status != models.TxStatusApproved {
			t.Errorf("spin entry %s: amount=%d status=%s, want 0/%s", r.ID, r.Amount, r.Status, models.TxStatusApproved)
		}
	}
}

func TestSpinDailyLimit(t *testing.T) {
	db := setupTestDB(t)
	clock := &testClock{time.Now()}
	spins, ledger := newSpinStack(db, clock, 2, []int64{25}, []float64{1.0})
	userID := createTestUser(t, db)

	for i := 0; i < 2; i++ {
		result, err := spins.Spin(userID, "")
		if err != nil {
			t.Fatalf("spin %d failed: %v", i+1, err)
		}
		if result.Amount != 25 {
			t.Errorf("spin %d amount = %d, want 25", i+1, result.Amount)
		}
	}

	if _, err := spins.Spin(userID, ""); !services.IsDenied(err) {
		t.Fatalf("third spin: expected daily-limit denial, got %v", err)
	}

	wallet, _ := ledger.Balance(userID)
	if wallet.Coins != 50 {
		t.Errorf("coins = %d, want 50 (denied spin must not credit)", wallet.Coins)
	}

	status, err := spins.Status(userID)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status.SpinsLeft != 0 {
		t.Errorf("spins left = %d, want 0", status.SpinsLeft)
	}

	// the limit is per day, so the next day spins again
	clock.t = clock.t.Add(24 * time.Hour)
	if _, err := spins.Spin(userID, ""); err != nil {
		t.Fatalf("spin after day rollover failed: %v", err)
	}
}
