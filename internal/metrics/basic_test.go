package metrics

import (
	"math"
	"testing"

	"cycleload/internal/model"
)

func TestBasicCadenceAndSpeed(t *testing.T) {
	s := &model.Stream{
		N:           4,
		Time:        []float64{0, 1, 2, 3},
		HasCadence:  true,
		Cadence:     []float64{80, 90, 100, 0},
		HasVelocity: true,
		Velocity:    []float64{5, 6, 7, 8},
	}
	out := Basic(s)

	if maxC, _ := out.Float("max_cadence"); maxC != 100 {
		t.Errorf("max_cadence = %v, want 100", maxC)
	}
	// Time-weighted over all samples, Δt ≡ 1: (80+90+100+0)/4.
	if avgC, _ := out.Float("average_cadence"); math.Abs(avgC-67.5) > 1e-9 {
		t.Errorf("average_cadence = %v, want 67.5", avgC)
	}
	if maxS, _ := out.Float("max_speed"); maxS != 8 {
		t.Errorf("max_speed = %v, want 8", maxS)
	}
	if avgS, _ := out.Float("average_speed"); math.Abs(avgS-6.5) > 1e-9 {
		t.Errorf("average_speed = %v, want 6.5", avgS)
	}
}

func TestBasicAllZeroColumnsEmitZeroSentinels(t *testing.T) {
	s := &model.Stream{
		N:          2,
		Time:       []float64{0, 1},
		HasCadence: true,
		Cadence:    []float64{0, 0},
	}
	out := Basic(s)
	if avgC, ok := out.Float("average_cadence"); !ok || avgC != 0 {
		t.Errorf("average_cadence = %v (ok=%v), want 0 sentinel", avgC, ok)
	}
}

func TestBasicAbsentColumnsEmitNothing(t *testing.T) {
	s := &model.Stream{N: 2, Time: []float64{0, 1}}
	out := Basic(s)
	if len(out) != 0 {
		t.Errorf("expected empty map for a stream with no cadence/velocity, got %v", out)
	}
}
