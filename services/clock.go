// services/clock.go
package services

import "time"

// Clock supplies the current time. Production uses SystemClock; tests inject
// a fixed clock so streak and cooldown math is deterministic.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// fixed date layout for day-granular comparisons (streaks, daily caps)
const dayLayout = "2006-01-02"

// DayKey renders t as a local calendar-date string. Day boundaries are
// decided by string equality, not elapsed seconds, so counters reset at
// local midnight.
func DayKey(t time.Time) string {
	return t.Format(dayLayout)
}
