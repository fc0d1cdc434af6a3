// services/settlement.go
package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/rajnidolly853-ship-it/smartearn-pro/utils"
)

// SettlementService exports paid withdrawals as monthly CSV reports for the
// finance side. Reports land in the R2 bucket under settlements/YYYY-MM.csv.
type SettlementService struct {
	Withdrawals *WithdrawalService
	Clock       Clock
}

func NewSettlementService(withdrawals *WithdrawalService, clock Clock) *SettlementService {
	return &SettlementService{Withdrawals: withdrawals, Clock: clock}
}

// BuildReport renders the CSV for the month containing t.
func (s *SettlementService) BuildReport(t time.Time) ([]byte, string, error) {
	from := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	to := from.AddDate(0, 1, 0)

	requests, err := s.Withdrawals.SettledBetween(from, to)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"request_id", "user_id", "method", "coins", "currency_amount", "external_ref", "processed_at"})
	for _, r := range requests {
		processedAt := ""
		if r.ProcessedAt != nil {
			processedAt = r.ProcessedAt.UTC().Format(time.RFC3339)
		}
		_ = w.Write([]string{
			r.ID,
			r.UserID,
			r.MethodID,
			strconv.FormatInt(r.Amount, 10),
			strconv.FormatFloat(r.CurrencyAmount, 'f', 2, 64),
			r.ExternalTxnRef,
			processedAt,
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", err
	}

	key := fmt.Sprintf("settlements/%s.csv", from.Format("2006-01"))
	return buf.Bytes(), key, nil
}

// ExportLastMonth builds and uploads the previous month's report. Called from
// the scheduler on the first of each month; a no-op when R2 is not configured.
func (s *SettlementService) ExportLastMonth() error {
	if !utils.R2Enabled() {
		log.Println("📄 [SETTLEMENT] R2 not configured, skipping export")
		return nil
	}

	lastMonth := s.Clock.Now().AddDate(0, -1, 0)
	data, key, err := s.BuildReport(lastMonth)
	if err != nil {
		return fmt.Errorf("failed to build settlement report: %w", err)
	}
	if err := utils.UploadBytesToR2(key, data, "text/csv"); err != nil {
		return err
	}
	log.Printf("📄 [SETTLEMENT] exported %s (%d bytes)", key, len(data))
	return nil
}
