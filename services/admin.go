// services/admin.go
package services

import (
	"errors"
	"log"
	"time"

	"github.com/rajnidolly853-ship-it/smartearn-pro/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// AdminService covers the moderation surface: manual balance adjustments,
// bans, pending-earning review and the ops dashboard numbers. Every mutation
// goes through the ledger so the audit trail stays complete.
type AdminService struct {
	DB            *gorm.DB
	Ledger        *LedgerService
	Notifications *NotificationService
	Clock         Clock
}

func NewAdminService(db *gorm.DB, ledger *LedgerService, notifications *NotificationService, clock Clock) *AdminService {
	return &AdminService{DB: db, Ledger: ledger, Notifications: notifications, Clock: clock}
}

// AdjustBalance credits (positive delta) or debits (negative delta) a user's
// wallet, recording an admin_adjustment ledger entry tagged with the acting
// admin. Debits fail closed on insufficient balance.
func (s *AdminService) AdjustBalance(adminID, userID string, delta int64, reason string) (string, error) {
	if delta == 0 {
		return "", ErrInvalidAmount
	}
	if reason == "" {
		reason = "Manual adjustment"
	}
	meta := models.JSONMap{"admin_id": adminID}

	var txnID string
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		if delta > 0 {
			txnID, err = s.Ledger.CreditTx(tx, userID, delta,
				models.TxTypeAdminAdjustment, reason, meta)
		} else {
			txnID, err = s.Ledger.DebitTx(tx, userID, -delta,
				models.TxTypeAdminAdjustment, reason, models.TxStatusApproved, meta)
		}
		return err
	})
	if err != nil {
		return "", err
	}

	log.Printf("🛠️ [ADMIN] balance adjusted: user=%s delta=%d by=%s reason=%q",
		userID, delta, adminID, reason)
	return txnID, nil
}

// BanUser blocks the account. Every subsequent risk assessment denies, so
// earning and withdrawing stop immediately; the wallet itself is untouched.
func (s *AdminService) BanUser(adminID, userID, reason string) error {
	now := s.Clock.Now()
	res := s.DB.Model(&models.User{}).
		Where("id = ? AND is_banned = false", userID).
		Updates(map[string]interface{}{
			"is_banned":  true,
			"ban_reason": reason,
			"banned_at":  &now,
			"banned_by":  &adminID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := s.DB.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrUserNotFound
		}
		return ErrAlreadyProcessed
	}

	log.Printf("🚫 [ADMIN] user banned: user=%s by=%s reason=%q", userID, adminID, reason)
	return nil
}

// UnbanUser lifts a ban and clears the ban metadata.
func (s *AdminService) UnbanUser(adminID, userID string) error {
	res := s.DB.Model(&models.User{}).
		Where("id = ? AND is_banned = true", userID).
		Updates(map[string]interface{}{
			"is_banned":  false,
			"ban_reason": "",
			"banned_at":  nil,
			"banned_by":  nil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}

	log.Printf("✅ [ADMIN] user unbanned: user=%s by=%s", userID, adminID)
	return nil
}

// ApprovePendingEarning releases a reviewed task credit into the spendable
// balance.
func (s *AdminService) ApprovePendingEarning(adminID, transactionID string) error {
	if err := s.Ledger.ReleasePending(transactionID); err != nil {
		return err
	}
	log.Printf("✅ [ADMIN] pending earning released: txn=%s by=%s", transactionID, adminID)
	return nil
}

// RejectPendingEarning drops a reviewed task credit.
func (s *AdminService) RejectPendingEarning(adminID, transactionID string) error {
	if err := s.Ledger.RejectPending(transactionID); err != nil {
		return err
	}
	log.Printf("❌ [ADMIN] pending earning rejected: txn=%s by=%s", transactionID, adminID)
	return nil
}

// ListPendingEarnings returns task credits awaiting review, oldest first.
func (s *AdminService) ListPendingEarnings(limit int) ([]models.Transaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var records []models.Transaction
	err := s.DB.Where("status = ? AND amount > 0", models.TxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

// CreateTaskOffer adds an offerwall entry to the catalog. The slug is derived
// from the title and is what clients reference on completion.
func (s *AdminService) CreateTaskOffer(adminID string, offer *models.TaskOffer) error {
	if offer.Title == "" || offer.Reward <= 0 {
		return ErrInvalidAmount
	}
	offer.ID = uuid.NewString()
	if offer.Slug == "" {
		offer.Slug = slug.Make(offer.Title)
	}
	if err := s.DB.Create(offer).Error; err != nil {
		return err
	}
	log.Printf("🆕 [ADMIN] task offer created: slug=%s reward=%d by=%s", offer.Slug, offer.Reward, adminID)
	return nil
}

// SetTaskOfferActive toggles an offer in or out of the catalog.
func (s *AdminService) SetTaskOfferActive(adminID, offerID string, active bool) error {
	res := s.DB.Model(&models.TaskOffer{}).
		Where("id = ?", offerID).
		Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrOfferNotFound
	}
	log.Printf("🛠️ [ADMIN] task offer %s active=%v by=%s", offerID, active, adminID)
	return nil
}

// UserDetail bundles everything the moderation screen shows for one account.
type UserDetail struct {
	User   models.User          `json:"user"`
	Wallet models.Wallet        `json:"wallet"`
	Stats  models.UserStats     `json:"stats"`
	Recent []models.Transaction `json:"recent_transactions"`
}

// GetUser loads the full moderation view of one account.
func (s *AdminService) GetUser(userID string) (*UserDetail, error) {
	var detail UserDetail
	err := s.DB.First(&detail.User, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.DB.First(&detail.Wallet, "user_id = ?", userID).Error; err != nil &&
		!errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	detail.Wallet.UserID = userID
	if err := s.DB.First(&detail.Stats, "user_id = ?", userID).Error; err != nil &&
		!errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	detail.Stats.UserID = userID

	records, err := s.Ledger.History(userID, 20)
	if err != nil {
		return nil, err
	}
	detail.Recent = records
	return &detail, nil
}

// ListUsers pages through accounts, most recently active first.
func (s *AdminService) ListUsers(limit, offset int) ([]models.User, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var users []models.User
	err := s.DB.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error
	return users, err
}

// DashboardStats is the ops overview.
type DashboardStats struct {
	TotalUsers           int64 `json:"total_users"`
	BannedUsers          int64 `json:"banned_users"`
	TotalCoinsInWallets  int64 `json:"total_coins_in_wallets"`
	TotalCoinsWithdrawn  int64 `json:"total_coins_withdrawn"`
	PendingWithdrawals   int64 `json:"pending_withdrawals"`
	PendingWithdrawCoins int64 `json:"pending_withdraw_coins"`
	PendingEarnings      int64 `json:"pending_earnings"`
	TransactionsToday    int64 `json:"transactions_today"`
}

// Stats computes the dashboard numbers with a handful of aggregate queries.
func (s *AdminService) Stats() (*DashboardStats, error) {
	var stats DashboardStats

	if err := s.DB.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.User{}).
		Where("is_banned = true").Count(&stats.BannedUsers).Error; err != nil {
		return nil, err
	}

	type walletAgg struct {
		Coins     int64
		Withdrawn int64
	}
	var wa walletAgg
	if err := s.DB.Model(&models.Wallet{}).
		Select("COALESCE(SUM(coins), 0) AS coins, COALESCE(SUM(total_withdrawn), 0) AS withdrawn").
		Scan(&wa).Error; err != nil {
		return nil, err
	}
	stats.TotalCoinsInWallets = wa.Coins
	stats.TotalCoinsWithdrawn = wa.Withdrawn

	type withdrawAgg struct {
		Count int64
		Coins int64
	}
	var pw withdrawAgg
	if err := s.DB.Model(&models.WithdrawalRequest{}).
		Where("status = ?", models.WithdrawalStatusPending).
		Select("COUNT(*) AS count, COALESCE(SUM(amount), 0) AS coins").
		Scan(&pw).Error; err != nil {
		return nil, err
	}
	stats.PendingWithdrawals = pw.Count
	stats.PendingWithdrawCoins = pw.Coins

	if err := s.DB.Model(&models.Transaction{}).
		Where("status = ? AND amount > 0", models.TxStatusPending).
		Count(&stats.PendingEarnings).Error; err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if err := s.DB.Model(&models.Transaction{}).
		Where("created_at >= ?", startOfDay).
		Count(&stats.TransactionsToday).Error; err != nil {
		return nil, err
	}

	return &stats, nil
}
