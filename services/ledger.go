// services/ledger.go
package services

import (
	"errors"

	"github.com/rajnidolly853-ship-it/smartearn-pro/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerService is the durable per-user balance plus the append-only
// transaction log. Every credit/debit mutates the wallet row and inserts
// exactly one Transaction inside a single DB transaction with the wallet row
// locked FOR UPDATE, so two concurrent grants to the same user can never lose
// an update and coins can never observe a negative value.
type LedgerService struct {
	DB *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{DB: db}
}

// lockWallet ensures the wallet row exists (lazily created with zero
// balances) and returns it locked for the duration of tx.
func lockWallet(tx *gorm.DB, userID string) (*models.Wallet, error) {
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Wallet{UserID: userID}).Error; err != nil {
		return nil, err
	}
	var wallet models.Wallet
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&wallet, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &wallet, nil
}

// CreditTx adds spendable coins inside the caller's DB transaction.
func (s *LedgerService) CreditTx(tx *gorm.DB, userID string, amount int64, txType models.TransactionType, description string, metadata models.JSONMap) (string, error) {
	if amount <= 0 {
		return "", ErrInvalidAmount
	}
	wallet, err := lockWallet(tx, userID)
	if err != nil {
		return "", err
	}

	wallet.Coins += amount
	wallet.TotalEarned += amount
	if err := tx.Save(wallet).Error; err != nil {
		return "", err
	}

	record := models.Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Type:        txType,
		Amount:      amount,
		Description: description,
		Status:      models.TxStatusApproved,
		Metadata:    metadata,
	}
	if err := tx.Create(&record).Error; err != nil {
		return "", err
	}
	return record.ID, nil
}

// Credit adds spendable coins in its own transaction.
func (s *LedgerService) Credit(userID string, amount int64, txType models.TransactionType, description string, metadata models.JSONMap) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		_, err := s.CreditTx(tx, userID, amount, txType, description, metadata)
		return err
	})
}

// CreditPendingTx adds earned-but-unverified coins. They are not spendable
// until an admin releases the pending transaction.
func (s *LedgerService) CreditPendingTx(tx *gorm.DB, userID string, amount int64, txType models.TransactionType, description string, metadata models.JSONMap) (string, error) {
	if amount <= 0 {
		return "", ErrInvalidAmount
	}
	wallet, err := lockWallet(tx, userID)
	if err != nil {
		return "", err
	}

	wallet.PendingCoins += amount
	if err := tx.Save(wallet).Error; err != nil {
		return "", err
	}

	record := models.Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Type:        txType,
		Amount:      amount,
		Description: description,
		Status:      models.TxStatusPending,
		Metadata:    metadata,
	}
	if err := tx.Create(&record).Error; err != nil {
		return "", err
	}
	return record.ID, nil
}

func (s *LedgerService) CreditPending(userID string, amount int64, txType models.TransactionType, description string, metadata models.JSONMap) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		_, err := s.CreditPendingTx(tx, userID, amount, txType, description, metadata)
		return err
	})
}

// DebitTx removes spendable coins inside the caller's DB transaction. The
// balance is re-checked under the row lock; if it is short, nothing is
// mutated and ErrInsufficientBalance is returned. The ledger entry is written
// with the given status (approved for immediate debits, pending for
// withdrawal holds).
func (s *LedgerService) DebitTx(tx *gorm.DB, userID string, amount int64, txType models.TransactionType, description string, status models.TransactionStatus, metadata models.JSONMap) (string, error) {
	if amount <= 0 {
		return "", ErrInvalidAmount
	}
	wallet, err := lockWallet(tx, userID)
	if err != nil {
		return "", err
	}

	if wallet.Coins < amount {
		return "", ErrInsufficientBalance
	}

	wallet.Coins -= amount
	if err := tx.Save(wallet).Error; err != nil {
		return "", err
	}

	record := models.Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Type:        txType,
		Amount:      -amount,
		Description: description,
		Status:      status,
		Metadata:    metadata,
	}
	if err := tx.Create(&record).Error; err != nil {
		return "", err
	}
	return record.ID, nil
}

// Debit removes spendable coins in its own transaction. Fails closed: the
// wallet is untouched when the balance is insufficient.
func (s *LedgerService) Debit(userID string, amount int64, txType models.TransactionType, description string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		_, err := s.DebitTx(tx, userID, amount, txType, description, models.TxStatusApproved, nil)
		return err
	})
}

// Balance returns the wallet, or a zero-balance wallet if none exists yet.
func (s *LedgerService) Balance(userID string) (*models.Wallet, error) {
	var wallet models.Wallet
	err := s.DB.First(&wallet, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.Wallet{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

// History returns the most recent ledger entries for a user.
func (s *LedgerService) History(userID string, limit int) ([]models.Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var records []models.Transaction
	err := s.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

// ReleasePending moves a pending credit into the spendable balance
// (task verified by review). Idempotent: a non-pending transaction returns
// ErrAlreadyProcessed.
func (s *LedgerService) ReleasePending(transactionID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var record models.Transaction
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&record, "id = ?", transactionID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTransactionNotFound
		}
		if err != nil {
			return err
		}
		if record.Status != models.TxStatusPending || record.Amount <= 0 {
			return ErrAlreadyProcessed
		}

		wallet, err := lockWallet(tx, record.UserID)
		if err != nil {
			return err
		}
		wallet.PendingCoins -= record.Amount
		if wallet.PendingCoins < 0 {
			wallet.PendingCoins = 0
		}
		wallet.Coins += record.Amount
		wallet.TotalEarned += record.Amount
		if err := tx.Save(wallet).Error; err != nil {
			return err
		}

		return tx.Model(&record).Update("status", models.TxStatusApproved).Error
	})
}

// RejectPending drops a pending credit (task failed review).
func (s *LedgerService) RejectPending(transactionID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var record models.Transaction
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&record, "id = ?", transactionID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTransactionNotFound
		}
		if err != nil {
			return err
		}
		if record.Status != models.TxStatusPending || record.Amount <= 0 {
			return ErrAlreadyProcessed
		}

		wallet, err := lockWallet(tx, record.UserID)
		if err != nil {
			return err
		}
		wallet.PendingCoins -= record.Amount
		if wallet.PendingCoins < 0 {
			wallet.PendingCoins = 0
		}
		if err := tx.Save(wallet).Error; err != nil {
			return err
		}

		return tx.Model(&record).Update("status", models.TxStatusRejected).Error
	})
}
