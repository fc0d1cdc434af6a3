// services/scheduler.go
package services

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// MaintenanceService owns the background housekeeping jobs.
type MaintenanceService struct {
	RateWindows *RateWindowService
	Settlements *SettlementService
}

func NewMaintenanceService(rateWindows *RateWindowService, settlements *SettlementService) *MaintenanceService {
	return &MaintenanceService{RateWindows: rateWindows, Settlements: settlements}
}

// StartScheduler launches the recurring jobs: hourly rate-window pruning and
// the monthly settlement export.
func (s *MaintenanceService) StartScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	// Every hour: drop rate windows idle for more than a week
	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() {
			deleted, err := s.RateWindows.PruneStale(7 * 24 * time.Hour)
			if err != nil {
				log.Printf("[Scheduler] rate window prune failed: %v", err)
				return
			}
			if deleted > 0 {
				log.Printf("[Scheduler] pruned %d stale rate windows", deleted)
			}
		}),
	)

	// First of each month at 02:00: export last month's settlement report
	_, _ = sched.NewJob(
		gocron.MonthlyJob(1,
			gocron.NewDaysOfTheMonth(1),
			gocron.NewAtTimes(gocron.NewAtTime(2, 0, 0)),
		),
		gocron.NewTask(func() {
			if err := s.Settlements.ExportLastMonth(); err != nil {
				log.Printf("[Scheduler] settlement export failed: %v", err)
			}
		}),
	)

	log.Println("✅ Maintenance scheduler started")
}
