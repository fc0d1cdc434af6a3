package models

import "time"

// Wallet holds a user's spendable and pending coin balances. One row per
// user, created lazily on the first credit, never deleted. Coins must never
// go negative; the balance is a cache of the transaction log and every
// mutation happens together with exactly one Transaction insert.
type Wallet struct {
	UserID       string `gorm:"primaryKey;type:uuid" json:"user_id"`
	Coins        int64  `gorm:"not null;default:0" json:"coins"`
	PendingCoins int64  `gorm:"not null;default:0" json:"pending_coins"`

	// Monotonic lifetime counters.
	TotalEarned    int64 `gorm:"not null;default:0" json:"total_earned"`
	TotalWithdrawn int64 `gorm:"not null;default:0" json:"total_withdrawn"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TransactionType identifies the reward source (or sink) of a ledger entry
type TransactionType string

const (
	TxTypeDailyCheckin    TransactionType = "daily_checkin"
	TxTypeSpinWheel       TransactionType = "spin_wheel"
	TxTypeWatchAd         TransactionType = "watch_ad"
	TxTypeTaskOffer       TransactionType = "task_offer"
	TxTypeReferralBonus   TransactionType = "referral_bonus"
	TxTypeWithdrawal      TransactionType = "withdrawal"
	TxTypeAdminAdjustment TransactionType = "admin_adjustment"
)

// TransactionStatus tracks the settlement state of a ledger entry
type TransactionStatus string

const (
	TxStatusPending  TransactionStatus = "pending"
	TxStatusApproved TransactionStatus = "approved"
	TxStatusRejected TransactionStatus = "rejected"
	TxStatusPaid     TransactionStatus = "paid"
	TxStatusFailed   TransactionStatus = "failed"
)

// Transaction is the append-only ledger record. Positive amount = credit,
// negative = debit. Rows are never updated except for status transitions
// (pending → approved/rejected for reviewed credits, pending → paid/rejected
// for withdrawal debits).
type Transaction struct {
	ID          string            `gorm:"primaryKey;type:uuid" json:"id"`
	UserID      string            `gorm:"index;not null" json:"user_id"`
	Type        TransactionType   `gorm:"type:varchar(32);not null;index" json:"type"`
	Amount      int64             `gorm:"not null" json:"amount"`
	Description string            `gorm:"type:text" json:"description"`
	Status      TransactionStatus `gorm:"type:varchar(16);not null;index" json:"status"`
	Metadata    JSONMap           `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at" gorm:"autoCreateTime;index"`
}

// Credited reports whether the entry counts toward the spendable balance.
func (t *Transaction) Credited() bool {
	return t.Amount > 0 && (t.Status == TxStatusApproved || t.Status == TxStatusPaid)
}
