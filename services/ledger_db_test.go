package services_test

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/rajnidolly853-ship-it/smartearn-pro/models"
	"github.com/rajnidolly853-ship-it/smartearn-pro/services"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupTestDB connects to the database named by TEST_DATABASE_URL; tests that
// need Postgres are skipped when it is unset.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping database test")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.UserDevice{},
		&models.Wallet{},
		&models.Transaction{},
		&models.UserStats{},
		&models.RateWindow{},
		&models.WithdrawalRequest{},
		&models.WithdrawalMethod{},
		&models.ReferralLink{},
		&models.TaskOffer{},
		&models.Notification{},
	); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

// createTestUser inserts a verified account old enough to pass every age gate.
func createTestUser(t *testing.T, db *gorm.DB) string {
	t.Helper()
	id := uuid.NewString()
	user := models.User{
		ID:          id,
		DisplayName: "Test User",
		Email:       id[:8] + "@example.com",
		Timestamps: models.Timestamps{
			CreatedAt: time.Now().Add(-72 * time.Hour),
		},
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return id
}

func TestLedgerCreditDebit(t *testing.T) {
	db := setupTestDB(t)
	ledger := services.NewLedgerService(db)
	userID := createTestUser(t, db)

	if err := ledger.Credit(userID, 100, models.TxTypeWatchAd, "test credit", nil); err != nil {
		t.Fatalf("Credit failed: %v", err)
	}

	wallet, err := ledger.Balance(userID)
	if err != nil {
		t.Fatalf("Balance failed: %v", err)
	}
	if wallet.Coins != 100 || wallet.TotalEarned != 100 {
		t.Errorf("after credit: coins=%d earned=%d, want 100/100", wallet.Coins, wallet.TotalEarned)
	}

	if err := ledger.Debit(userID, 30, models.TxTypeWithdrawal, "test debit"); err != nil {
		t.Fatalf("Debit failed: %v", err)
	}

	// overdraft must fail closed and leave the balance untouched
	err = ledger.Debit(userID, 1000, models.TxTypeWithdrawal, "overdraft")
	if !errors.Is(err, services.ErrInsufficientBalance) {
		t.Fatalf("overdraft: expected ErrInsufficientBalance, got %v", err)
	}

	wallet, _ = ledger.Balance(userID)
	if wallet.Coins != 70 {
		t.Errorf("after failed debit: coins=%d, want 70", wallet.Coins)
	}

	history, err := ledger.History(userID, 10)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 2 {
		t.Errorf("history has %d entries, want 2 (failed debit must not be recorded)", len(history))
	}
}

func TestLedgerReleasePendingIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ledger := services.NewLedgerService(db)
	userID := createTestUser(t, db)

	if err := ledger.CreditPending(userID, 50, models.TxTypeTaskOffer, "pending task", nil); err != nil {
		t.Fatalf("CreditPending failed: %v", err)
	}

	wallet, _ := ledger.Balance(userID)
	if wallet.Coins != 0 || wallet.PendingCoins != 50 {
		t.Fatalf("after pending credit: coins=%d pending=%d, want 0/50", wallet.Coins, wallet.PendingCoins)
	}

	var record models.Transaction
	if err := db.First(&record, "user_id = ? AND status = ?", userID, models.TxStatusPending).Error; err != nil {
		t.Fatalf("pending transaction not found: %v", err)
	}

	if err := ledger.ReleasePending(record.ID); err != nil {
		t.Fatalf("ReleasePending failed: %v", err)
	}
	if err := ledger.ReleasePending(record.ID); !errors.Is(err, services.ErrAlreadyProcessed) {
		t.Fatalf("second release: expected ErrAlreadyProcessed, got %v", err)
	}

	wallet, _ = ledger.Balance(userID)
	if wallet.Coins != 50 || wallet.PendingCoins != 0 || wallet.TotalEarned != 50 {
		t.Errorf("after release: coins=%d pending=%d earned=%d, want 50/0/50",
			wallet.Coins, wallet.PendingCoins, wallet.TotalEarned)
	}
}

func TestWithdrawalLifecycle(t *testing.T) {
	db := setupTestDB(t)
	clock := services.SystemClock{}
	ledger := services.NewLedgerService(db)
	rateWindows := services.NewRateWindowService(db, clock)
	risk := services.NewRiskService(db, rateWindows, clock, 2, 100)
	notifications := services.NewNotificationService(db)
	withdrawals := services.NewWithdrawalService(db, ledger, risk, notifications, clock, 1000, 100000, 1000)

	userID := createTestUser(t, db)
	if err := ledger.Credit(userID, 5000, models.TxTypeWatchAd, "seed balance", nil); err != nil {
		t.Fatalf("seed credit failed: %v", err)
	}

	method := models.WithdrawalMethod{ID: "upi-" + uuid.NewString()[:8], Name: "UPI", MinAmount: 1000, IsActive: true}
	if err := db.Create(&method).Error; err != nil {
		t.Fatalf("failed to create method: %v", err)
	}

	request, err := withdrawals.Request(userID, "", method.ID, 2000, models.JSONMap{"upi_id": "test@upi"})
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}

	wallet, _ := ledger.Balance(userID)
	if wallet.Coins != 3000 {
		t.Errorf("coins not held on request: coins=%d, want 3000", wallet.Coins)
	}

	// second request while one is pending must be refused
	if _, err := withdrawals.Request(userID, "", method.ID, 1000, nil); !services.IsDenied(err) {
		t.Errorf("second pending request: expected denial, got %v", err)
	}

	if _, err := withdrawals.Approve("admin-1", request.ID, "payout-ref-1"); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if _, err := withdrawals.Approve("admin-1", request.ID, "payout-ref-1"); !errors.Is(err, services.ErrAlreadyProcessed) {
		t.Fatalf("double approve: expected ErrAlreadyProcessed, got %v", err)
	}

	wallet, _ = ledger.Balance(userID)
	if wallet.TotalWithdrawn != 2000 {
		t.Errorf("total withdrawn = %d, want 2000", wallet.TotalWithdrawn)
	}
}

func TestWithdrawalRejectRefunds(t *testing.T) {
	db := setupTestDB(t)
	clock := services.SystemClock{}
	ledger := services.NewLedgerService(db)
	rateWindows := services.NewRateWindowService(db, clock)
	risk := services.NewRiskService(db, rateWindows, clock, 2, 100)
	notifications := services.NewNotificationService(db)
	withdrawals := services.NewWithdrawalService(db, ledger, risk, notifications, clock, 1000, 100000, 1000)

	userID := createTestUser(t, db)
	if err := ledger.Credit(userID, 3000, models.TxTypeWatchAd, "seed balance", nil); err != nil {
		t.Fatalf("seed credit failed: %v", err)
	}
	method := models.WithdrawalMethod{ID: "paytm-" + uuid.NewString()[:8], Name: "Paytm", MinAmount: 1000, IsActive: true}
	if err := db.Create(&method).Error; err != nil {
		t.Fatalf("failed to create method: %v", err)
	}

	request, err := withdrawals.Request(userID, "", method.ID, 1500, nil)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}

	if _, err := withdrawals.Reject("admin-1", request.ID, "invalid details"); err != nil {
		t.Fatalf("Reject failed: %v", err)
	}
	if _, err := withdrawals.Reject("admin-1", request.ID, "again"); !errors.Is(err, services.ErrAlreadyProcessed) {
		t.Fatalf("double reject: expected ErrAlreadyProcessed, got %v", err)
	}

	wallet, _ := ledger.Balance(userID)
	if wallet.Coins != 3000 {
		t.Errorf("refund missing: coins=%d, want 3000", wallet.Coins)
	}
	if wallet.TotalWithdrawn != 0 {
		t.Errorf("rejected request must not count as withdrawn, got %d", wallet.TotalWithdrawn)
	}
}

func TestReferralBonusPaysOnce(t *testing.T) {
	db := setupTestDB(t)
	clock := services.SystemClock{}
	ledger := services.NewLedgerService(db)
	notifications := services.NewNotificationService(db)
	referrals := services.NewReferralService(db, ledger, notifications, clock, 50, 25)

	referrerID := createTestUser(t, db)
	refereeID := createTestUser(t, db)

	code, err := referrals.EnsureCode(referrerID)
	if err != nil {
		t.Fatalf("EnsureCode failed: %v", err)
	}
	if len(code) != 6 {
		t.Errorf("code %q has length %d, want 6", code, len(code))
	}

	if _, err := referrals.Apply(refereeID, code); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	// self-referral and double binding are both refused
	if _, err := referrals.Apply(referrerID, code); !services.IsDenied(err) {
		t.Errorf("self-referral: expected denial, got %v", err)
	}
	if _, err := referrals.Apply(refereeID, code); !services.IsDenied(err) {
		t.Errorf("second apply: expected denial, got %v", err)
	}

	if err := referrals.PayBonus(refereeID); err != nil {
		t.Fatalf("PayBonus failed: %v", err)
	}
	if err := referrals.PayBonus(refereeID); !errors.Is(err, services.ErrAlreadyProcessed) {
		t.Fatalf("second payout: expected ErrAlreadyProcessed, got %v", err)
	}

	referrerWallet, _ := ledger.Balance(referrerID)
	refereeWallet, _ := ledger.Balance(refereeID)
	if referrerWallet.Coins != 50 {
		t.Errorf("referrer coins = %d, want 50", referrerWallet.Coins)
	}
	if refereeWallet.Coins != 25 {
		t.Errorf("referee coins = %d, want 25", refereeWallet.Coins)
	}
}
