// services/spin.go
package services

import (
	"fmt"
	"log"
	"math/rand"
	"sync"

	"github.com/rajnidolly853-ship-it/smartearn-pro/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SpinService runs the daily spin wheel. Prizes and their probabilities come
// from config (validated to the same length, probabilities summing to 1); the
// draw happens server-side so the client animation is presentation only.
// A zero-coin prize still consumes the spin and still writes a ledger entry,
// so the audit trail shows every draw.
type SpinService struct {
	DB          *gorm.DB
	Ledger      *LedgerService
	RateWindows *RateWindowService
	Risk        *RiskService
	Clock       Clock

	DailyLimit    int
	Prizes        []int64
	Probabilities []float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSpinService wires the wheel. rng may be nil in production; tests inject
// a seeded source to make draws deterministic.
func NewSpinService(db *gorm.DB, ledger *LedgerService, rateWindows *RateWindowService, risk *RiskService, clock Clock, dailyLimit int, prizes []int64, probabilities []float64, rng *rand.Rand) *SpinService {
	if rng == nil {
		rng = rand.New(rand.NewSource(clock.Now().UnixNano()))
	}
	return &SpinService{
		DB:            db,
		Ledger:        ledger,
		RateWindows:   rateWindows,
		Risk:          risk,
		Clock:         clock,
		DailyLimit:    dailyLimit,
		Prizes:        prizes,
		Probabilities: probabilities,
		rng:           rng,
	}
}

// draw picks a prize index by walking the cumulative distribution. Float
// drift lands on the last segment.
func (s *SpinService) draw() int {
	s.mu.Lock()
	r := s.rng.Float64()
	s.mu.Unlock()

	cumulative := 0.0
	for i, p := range s.Probabilities {
		cumulative += p
		if r < cumulative {
			return i
		}
	}
	return len(s.Probabilities) - 1
}

// SpinResult reports one draw.
type SpinResult struct {
	TransactionID string `json:"transaction_id,omitempty"`
	PrizeIndex    int    `json:"prize_index"`
	Amount        int64  `json:"amount"`
	SpinsLeft     int    `json:"spins_left"`
}

// Spin consumes one of today's spins and credits the drawn prize. The daily
// cap is checked on the locked window row in the same transaction as the
// credit, so parallel requests cannot spin past the limit.
func (s *SpinService) Spin(userID, deviceID string) (*SpinResult, error) {
	assessment, err := s.Risk.Assess(userID, deviceID, models.ActionSpinWheel)
	if err != nil {
		return nil, err
	}
	if !assessment.Allowed {
		return nil, DeniedWithScore(assessment.Reason, assessment.RiskScore)
	}

	var result SpinResult
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		window, err := s.RateWindows.Acquire(tx, userID, models.ActionSpinWheel)
		if err != nil {
			return err
		}
		if s.RateWindows.TodayCount(window) >= s.DailyLimit {
			return Denied("Daily spin limit reached. Come back tomorrow!")
		}

		idx := s.draw()
		amount := s.Prizes[idx]
		meta := models.JSONMap{"prize_index": idx}

		if amount > 0 {
			txnID, err := s.Ledger.CreditTx(tx, userID, amount, models.TxTypeSpinWheel,
				fmt.Sprintf("Spin wheel prize: %d coins", amount), meta)
			if err != nil {
				return err
			}
			result.TransactionID = txnID
		} else {
			// zero prize: no balance change, but the draw is still on the ledger
			record := models.Transaction{
				ID:          uuid.NewString(),
				UserID:      userID,
				Type:        models.TxTypeSpinWheel,
				Amount:      0,
				Description: "Spin wheel: better luck next time",
				Status:      models.TxStatusApproved,
				Metadata:    meta,
			}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
			result.TransactionID = record.ID
		}

		if err := s.RateWindows.Record(tx, window); err != nil {
			return err
		}
		result.PrizeIndex = idx
		result.Amount = amount
		result.SpinsLeft = s.DailyLimit - s.RateWindows.TodayCount(window)
		return bumpStat(tx, userID, "spins_used", 1)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("🎡 [SPIN] user=%s prize=%d coins left=%d", userID, result.Amount, result.SpinsLeft)
	return &result, nil
}

// SpinStatus is the wheel screen payload.
type SpinStatus struct {
	Prizes     []int64 `json:"prizes"`
	SpinsLeft  int     `json:"spins_left"`
	DailyLimit int     `json:"daily_limit"`
}

// Status reports the configured wheel and how many spins remain today.
// Probabilities stay server-side.
func (s *SpinService) Status(userID string) (*SpinStatus, error) {
	used, err := s.RateWindows.DayCountFor(userID, models.ActionSpinWheel)
	if err != nil {
		return nil, err
	}
	left := s.DailyLimit - used
	if left < 0 {
		left = 0
	}
	return &SpinStatus{Prizes: s.Prizes, SpinsLeft: left, DailyLimit: s.DailyLimit}, nil
}
