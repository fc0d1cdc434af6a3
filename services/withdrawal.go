// services/withdrawal.go
package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/rajnidolly853-ship-it/smartearn-pro/models"
	"github.com/rajnidolly853-ship-it/smartearn-pro/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WithdrawalService turns coins into payout requests and settles them. Coins
// are debited the moment the request is created, so a pending request always
// has its amount held; approval marks the money paid, rejection puts the
// coins back. Both admin actions are idempotent via a FOR UPDATE status
// check.
type WithdrawalService struct {
	DB            *gorm.DB
	Ledger        *LedgerService
	Risk          *RiskService
	Notifications *NotificationService
	Clock         Clock

	MinAmount int64
	MaxAmount int64
	CoinRate  float64 // coins per one unit of currency
}

func NewWithdrawalService(db *gorm.DB, ledger *LedgerService, risk *RiskService, notifications *NotificationService, clock Clock, minAmount, maxAmount int64, coinRate float64) *WithdrawalService {
	return &WithdrawalService{
		DB:            db,
		Ledger:        ledger,
		Risk:          risk,
		Notifications: notifications,
		Clock:         clock,
		MinAmount:     minAmount,
		MaxAmount:     maxAmount,
		CoinRate:      coinRate,
	}
}

// Methods lists the active payout rails.
func (s *WithdrawalService) Methods() ([]models.WithdrawalMethod, error) {
	var methods []models.WithdrawalMethod
	err := s.DB.Where("is_active = true").Order("min_amount ASC").Find(&methods).Error
	return methods, err
}

// Request creates a payout request, debiting the coins up-front. Checks run
// in a fixed order (amount bounds, method, risk overlay, one pending request
// at a time, balance) so the user always sees the most actionable error.
func (s *WithdrawalService) Request(userID, deviceID, methodID string, amount int64, details models.JSONMap) (*models.WithdrawalRequest, error) {
	if amount < s.MinAmount {
		return nil, Denied(fmt.Sprintf("Minimum withdrawal is %d coins", s.MinAmount))
	}
	wallet, err := s.Ledger.Balance(userID)
	if err != nil {
		return nil, err
	}
	if amount > wallet.Coins {
		return nil, ErrInsufficientBalance
	}
	if amount > s.MaxAmount {
		return nil, Denied(fmt.Sprintf("Maximum withdrawal is %d coins", s.MaxAmount))
	}

	var method models.WithdrawalMethod
	err = s.DB.First(&method, "id = ? AND is_active = true", methodID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMethodNotFound
	}
	if err != nil {
		return nil, err
	}
	if amount < method.MinAmount {
		return nil, Denied(fmt.Sprintf("%s requires at least %d coins", method.Name, method.MinAmount))
	}

	assessment, err := s.Risk.ValidateWithdrawal(userID, deviceID, amount)
	if err != nil {
		return nil, err
	}
	if !assessment.Allowed {
		return nil, DeniedWithScore(assessment.Reason, assessment.RiskScore)
	}

	request := models.WithdrawalRequest{
		ID:             uuid.NewString(),
		UserID:         userID,
		MethodID:       method.ID,
		Amount:         amount,
		CurrencyAmount: float64(amount) / s.CoinRate,
		Details:        details,
		Status:         models.WithdrawalStatusPending,
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		// Take the wallet lock before counting, so two concurrent requests
		// serialize here and the second one sees the first one's pending row.
		if _, err := lockWallet(tx, userID); err != nil {
			return err
		}

		var open int64
		if err := tx.Model(&models.WithdrawalRequest{}).
			Where("user_id = ? AND status = ?", userID, models.WithdrawalStatusPending).
			Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			return Denied("You already have a pending withdrawal request")
		}

		txnID, err := s.Ledger.DebitTx(tx, userID, amount, models.TxTypeWithdrawal,
			fmt.Sprintf("Withdrawal via %s", method.Name),
			models.TxStatusPending,
			models.JSONMap{"method_id": method.ID})
		if err != nil {
			return err
		}
		request.TransactionID = txnID
		return tx.Create(&request).Error
	})
	if err != nil {
		return nil, err
	}

	log.Printf("💸 [WITHDRAWAL] request created: user=%s method=%s amount=%d (%s)",
		userID, method.ID, amount, utils.FormatINR(request.CurrencyAmount))
	return &request, nil
}

// lockRequest loads the request FOR UPDATE inside tx.
func lockRequest(tx *gorm.DB, requestID string) (*models.WithdrawalRequest, error) {
	var request models.WithdrawalRequest
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&request, "id = ?", requestID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// Approve settles a pending request as paid: the held debit becomes final and
// totalWithdrawn advances. A request that is already paid or rejected returns
// ErrAlreadyProcessed and changes nothing.
func (s *WithdrawalService) Approve(adminID, requestID, externalRef string) (*models.WithdrawalRequest, error) {
	var request *models.WithdrawalRequest
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		request, err = lockRequest(tx, requestID)
		if err != nil {
			return err
		}
		if request.Status != models.WithdrawalStatusPending {
			return ErrAlreadyProcessed
		}

		wallet, err := lockWallet(tx, request.UserID)
		if err != nil {
			return err
		}
		wallet.TotalWithdrawn += request.Amount
		if err := tx.Save(wallet).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Transaction{}).
			Where("id = ?", request.TransactionID).
			Update("status", models.TxStatusPaid).Error; err != nil {
			return err
		}

		now := s.Clock.Now()
		request.Status = models.WithdrawalStatusPaid
		request.ProcessedAt = &now
		request.ProcessedBy = &adminID
		request.ExternalTxnRef = externalRef
		return tx.Save(request).Error
	})
	if err != nil {
		return nil, err
	}

	if err := s.Notifications.NotifyWithdrawalApproved(request.UserID, utils.FormatINR(request.CurrencyAmount)); err != nil {
		log.Printf("⚠️ [WITHDRAWAL] failed to queue approval notification: %v", err)
	}
	log.Printf("✅ [WITHDRAWAL] paid: request=%s user=%s amount=%d by=%s",
		request.ID, request.UserID, request.Amount, adminID)
	return request, nil
}

// Reject settles a pending request as rejected and returns the held coins to
// the spendable balance. Idempotent the same way Approve is.
func (s *WithdrawalService) Reject(adminID, requestID, reason string) (*models.WithdrawalRequest, error) {
	var request *models.WithdrawalRequest
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		request, err = lockRequest(tx, requestID)
		if err != nil {
			return err
		}
		if request.Status != models.WithdrawalStatusPending {
			return ErrAlreadyProcessed
		}

		wallet, err := lockWallet(tx, request.UserID)
		if err != nil {
			return err
		}
		wallet.Coins += request.Amount
		if err := tx.Save(wallet).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Transaction{}).
			Where("id = ?", request.TransactionID).
			Update("status", models.TxStatusRejected).Error; err != nil {
			return err
		}

		now := s.Clock.Now()
		request.Status = models.WithdrawalStatusRejected
		request.ProcessedAt = &now
		request.ProcessedBy = &adminID
		request.RejectionReason = reason
		return tx.Save(request).Error
	})
	if err != nil {
		return nil, err
	}

	if err := s.Notifications.NotifyWithdrawalRejected(request.UserID, reason); err != nil {
		log.Printf("⚠️ [WITHDRAWAL] failed to queue rejection notification: %v", err)
	}
	log.Printf("❌ [WITHDRAWAL] rejected: request=%s user=%s reason=%q by=%s",
		request.ID, request.UserID, reason, adminID)
	return request, nil
}

// ListForUser returns the user's withdrawal history, newest first.
func (s *WithdrawalService) ListForUser(userID string, limit int) ([]models.WithdrawalRequest, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var requests []models.WithdrawalRequest
	err := s.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&requests).Error
	return requests, err
}

// ListPending returns the admin review queue, oldest first.
func (s *WithdrawalService) ListPending(limit int) ([]models.WithdrawalRequest, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var requests []models.WithdrawalRequest
	err := s.DB.Where("status = ?", models.WithdrawalStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&requests).Error
	return requests, err
}

// SettledBetween returns paid requests in [from, to), used by the monthly
// settlement export.
func (s *WithdrawalService) SettledBetween(from, to time.Time) ([]models.WithdrawalRequest, error) {
	var requests []models.WithdrawalRequest
	err := s.DB.Where("status = ? AND processed_at >= ? AND processed_at < ?",
		models.WithdrawalStatusPaid, from, to).
		Order("processed_at ASC").
		Find(&requests).Error
	return requests, err
}
