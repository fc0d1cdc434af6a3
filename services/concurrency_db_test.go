package services_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/rajnidolly853-ship-it/smartearn-pro/models"
	"github.com/rajnidolly853-ship-it/smartearn-pro/services"

	"github.com/google/uuid"
)

// Two debits race for a balance that only covers one of them. The row lock
// must let exactly one through and the other must fail closed.
func TestConcurrentDebitsNeverOverdraw(t *testing.T) {
	db := setupTestDB(t)
	ledger := services.NewLedgerService(db)
	userID := createTestUser(t, db)

	if err := ledger.Credit(userID, 100, models.TxTypeWatchAd, "seed balance", nil); err != nil {
		t.Fatalf("seed credit failed: %v", err)
	}

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- ledger.Debit(userID, 80, models.TxTypeWithdrawal, "racing debit")
		}()
	}
	wg.Wait()
	close(errs)

	var succeeded, refused int
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, services.ErrInsufficientBalance):
			refused++
		default:
			t.Fatalf("unexpected debit error: %v", err)
		}
	}
	if succeeded != 1 || refused != 1 {
		t.Fatalf("got %d successes and %d refusals, want exactly one of each", succeeded, refused)
	}

	wallet, _ := ledger.Balance(userID)
	if wallet.Coins != 20 {
		t.Errorf("coins = %d, want 20 (balance must never go negative)", wallet.Coins)
	}
}

// Two withdrawal requests race; the balance covers both, so only the
// one-pending-request rule separates them. Exactly one may commit.
func TestConcurrentWithdrawalRequestsAllowOnePending(t *testing.T) {
	db := setupTestDB(t)
	clock := services.SystemClock{}
	ledger := services.NewLedgerService(db)
	rateWindows := services.NewRateWindowService(db, clock)
	risk := services.NewRiskService(db, rateWindows, clock, 2, 100)
	notifications := services.NewNotificationService(db)
	withdrawals := services.NewWithdrawalService(db, ledger, risk, notifications, clock, 1000, 100000, 1000)

	userID := createTestUser(t, db)
	if err := ledger.Credit(userID, 10000, models.TxTypeWatchAd, "seed balance", nil); err != nil {
		t.Fatalf("seed credit failed: %v", err)
	}
	method := models.WithdrawalMethod{ID: "upi-" + uuid.NewString()[:8], Name: "UPI", MinAmount: 1000, IsActive: true}
	if err := db.Create(&method).Error; err != nil {
		t.Fatalf("failed to create method: %v", err)
	}

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := withdrawals.Request(userID, "", method.ID, 2000, nil)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var succeeded, refused int
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case services.IsDenied(err):
			refused++
		default:
			t.Fatalf("unexpected request error: %v", err)
		}
	}
	if succeeded != 1 || refused != 1 {
		t.Fatalf("got %d successes and %d refusals, want exactly one of each", succeeded, refused)
	}

	var pending int64
	if err := db.Model(&models.WithdrawalRequest{}).
		Where("user_id = ? AND status = ?", userID, models.WithdrawalStatusPending).
		Count(&pending).Error; err != nil {
		t.Fatalf("failed to count pending requests: %v", err)
	}
	if pending != 1 {
		t.Errorf("pending requests = %d, want 1", pending)
	}

	wallet, _ := ledger.Balance(userID)
	if wallet.Coins != 8000 {
		t.Errorf("coins = %d, want 8000 (only one request may hold coins)", wallet.Coins)
	}
}
