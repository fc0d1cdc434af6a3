// services/errors.go
package services

import "errors"

// Infrastructure-or-state errors. These are distinguishable from policy
// denials so callers can decide between retrying and informing the user.
var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrAlreadyProcessed    = errors.New("request already processed")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrUserNotFound        = errors.New("user not found")
	ErrMethodNotFound      = errors.New("withdrawal method not found")
	ErrOfferNotFound       = errors.New("task offer not found")
	ErrReferralNotFound    = errors.New("referral not found")
	ErrTransactionNotFound = errors.New("transaction not found")
)

// DeniedError is a policy-level refusal: cooldown active, cap reached, risk
// too high. Expected and frequent — never a crash. Reason is user-facing and
// displayed verbatim (or localized) by the UI.
type DeniedError struct {
	Reason    string
	RiskScore int
}

func (e *DeniedError) Error() string { return e.Reason }

func Denied(reason string) *DeniedError {
	return &DeniedError{Reason: reason}
}

func DeniedWithScore(reason string, score int) *DeniedError {
	return &DeniedError{Reason: reason, RiskScore: score}
}

// IsDenied reports whether err is a policy denial rather than an
// infrastructure failure.
func IsDenied(err error) bool {
	var d *DeniedError
	return errors.As(err, &d)
}
