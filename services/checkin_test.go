package services

import "testing"

func TestCheckinRewardSchedule(t *testing.T) {
	s := &CheckinService{Base: 5, Increment: 5, CapDays: 7}

	tests := []struct {
		day  int
		want int64
	}{
		{1, 5},
		{2, 10},
		{3, 15},
		{7, 35},
		{8, 35},   // plateau
		{100, 35}, // long streaks stay at the cap
	}

	for _, tt := range tests {
		if got := s.rewardFor(tt.day); got != tt.want {
			t.Errorf("rewardFor(%d) = %d, want %d", tt.day, got, tt.want)
		}
	}
}
