package services

import (
	"math"
	"math/rand"
	"testing"
)

func TestDrawDistribution(t *testing.T) {
	prizes := []int64{1, 5, 10, 2, 50, 5, 20, 0}
	probs := []float64{0.3, 0.2, 0.1, 0.2, 0.02, 0.1, 0.05, 0.03}

	s := &SpinService{
		Prizes:        prizes,
		Probabilities: probs,
		rng:           rand.New(rand.NewSource(42)),
	}

	const draws = 200000
	counts := make([]int, len(prizes))
	for i := 0; i < draws; i++ {
		idx := s.draw()
		if idx < 0 || idx >= len(prizes) {
			t.Fatalf("draw returned out-of-range index %d", idx)
		}
		counts[idx]++
	}

	for i, p := range probs {
		got := float64(counts[i]) / draws
		if math.Abs(got-p) > 0.01 {
			t.Errorf("prize %d: expected frequency %.3f, got %.3f", i, p, got)
		}
	}
}

func TestDrawFallbackOnFloatDrift(t *testing.T) {
	// probabilities that undershoot 1.0: a draw past the last boundary must
	// land on the final segment instead of panicking
	s := &SpinService{
		Prizes:        []int64{10, 0},
		Probabilities: []float64{0.5, 0.4999999},
		rng:           rand.New(rand.NewSource(1)),
	}

	for i := 0; i < 10000; i++ {
		idx := s.draw()
		if idx != 0 && idx != 1 {
			t.Fatalf("draw returned invalid index %d", idx)
		}
	}
}
