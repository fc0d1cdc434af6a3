package models

import "time"

// WithdrawalStatus is the request lifecycle state
type WithdrawalStatus string

const (
	WithdrawalStatusPending  WithdrawalStatus = "pending"
	WithdrawalStatusPaid     WithdrawalStatus = "paid"     // terminal
	WithdrawalStatusRejected WithdrawalStatus = "rejected" // terminal, refunds coins
)

// WithdrawalRequest is created only after the coins were provisionally
// debited, so a pending request always has its amount held. Rejection credits
// the amount back; payment increments the wallet's totalWithdrawn.
type WithdrawalRequest struct {
	ID string `gorm:"primaryKey;type:uuid" json:"id"`
	// The partial unique index enforces at most one pending request per user
	// at the schema level; the service also refuses the second one politely.
	UserID         string  `gorm:"index;not null;uniqueIndex:idx_withdrawals_one_pending,where:status = 'pending'" json:"user_id"`
	MethodID       string  `gorm:"size:64;not null" json:"method_id"`
	Amount         int64   `gorm:"not null" json:"amount"`          // coins, debited up-front
	CurrencyAmount float64 `gorm:"not null" json:"currency_amount"` // amount / coin rate

	// Payment destination, method-specific (UPI id, Paytm number, gift-card email).
	Details JSONMap `gorm:"type:jsonb" json:"details"`

	Status WithdrawalStatus `gorm:"type:varchar(16);not null;index;default:'pending'" json:"status"`

	// Ledger entry for the up-front debit; its status follows the request's.
	TransactionID string `gorm:"type:uuid" json:"transaction_id,omitempty"`

	ProcessedAt     *time.Time `json:"processed_at,omitempty"`
	ProcessedBy     *string    `json:"processed_by,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	ExternalTxnRef  string     `json:"external_txn_ref,omitempty"` // payout reference from the payment rail

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// WithdrawalMethod is a payout rail offered to users (UPI, Paytm, gift cards).
// ID is a slug derived from the name; MinAmount lets individual rails demand
// more than the global minimum.
type WithdrawalMethod struct {
	ID        string `gorm:"primaryKey;size:64" json:"id"`
	Name      string `gorm:"size:128;not null" json:"name"`
	Icon      string `gorm:"size:16" json:"icon,omitempty"`
	MinAmount int64  `gorm:"not null;default:0" json:"min_amount"`
	IsActive  bool   `gorm:"default:true" json:"is_active"`

	Timestamps
}
