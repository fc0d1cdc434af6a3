package services

import (
	"testing"
	"time"

	"github.com/rajnidolly853-ship-it/smartearn-pro/models"
)

type fixedClock struct{ t time.Time }

func (f fixedClock) Now() time.Time { return f.t }

func TestPruneBefore(t *testing.T) {
	ts := models.Int64List{100, 200, 300, 400}

	got := pruneBefore(ts, 250)
	if len(got) != 2 || got[0] != 300 || got[1] != 400 {
		t.Errorf("pruneBefore(250) = %v, want [300 400]", got)
	}

	if got := pruneBefore(models.Int64List{}, 250); len(got) != 0 {
		t.Errorf("pruning an empty list should stay empty, got %v", got)
	}

	// cutoff is exclusive: a timestamp exactly at the cutoff is dropped
	if got := pruneBefore(models.Int64List{250}, 250); len(got) != 0 {
		t.Errorf("timestamp at cutoff should be dropped, got %v", got)
	}
}

func TestHourCount(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	s := &RateWindowService{Clock: fixedClock{now}}

	window := &models.RateWindow{
		Timestamps: models.Int64List{
			now.Add(-90 * time.Minute).UnixMilli(), // outside the hour
			now.Add(-59 * time.Minute).UnixMilli(),
			now.Add(-10 * time.Minute).UnixMilli(),
		},
	}

	if got := s.HourCount(window); got != 2 {
		t.Errorf("HourCount() = %d, want 2", got)
	}
}

func TestSinceLast(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	s := &RateWindowService{Clock: fixedClock{now}}

	if _, ok := s.SinceLast(&models.RateWindow{}); ok {
		t.Error("SinceLast on a fresh window should report no prior action")
	}

	last := now.Add(-45 * time.Second)
	since, ok := s.SinceLast(&models.RateWindow{LastActionAt: &last})
	if !ok || since != 45*time.Second {
		t.Errorf("SinceLast() = %v, %v; want 45s, true", since, ok)
	}
}

func TestTodayCountResetsAcrossDayBoundary(t *testing.T) {
	now := time.Date(2026, 8, 29, 0, 0, 1, 0, time.UTC)
	s := &RateWindowService{Clock: fixedClock{now}}

	yesterday := &models.RateWindow{DayKey: "2026-08-28", DayCount: 20}
	if got := s.TodayCount(yesterday); got != 0 {
		t.Errorf("yesterday's counter should read 0 today, got %d", got)
	}

	today := &models.RateWindow{DayKey: "2026-08-29", DayCount: 3}
	if got := s.TodayCount(today); got != 3 {
		t.Errorf("TodayCount() = %d, want 3", got)
	}
}

func TestDayKey(t *testing.T) {
	// one second before and after midnight land on different keys
	before := time.Date(2026, 8, 28, 23, 59, 59, 0, time.UTC)
	after := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	if DayKey(before) == DayKey(after) {
		t.Error("day key should change at midnight")
	}
	if got := DayKey(after); got != "2026-08-29" {
		t.Errorf("DayKey() = %q, want 2026-08-29", got)
	}
}
