package metrics

import (
	"math"
	"testing"

	"cycleload/internal/model"
)

func runView(velocity, grade float64, n int) *model.Stream {
	s := &model.Stream{
		N:           n,
		Time:        make([]float64, n),
		HasVelocity: true,
		Velocity:    make([]float64, n),
		HasGrade:    true,
		Grade:       make([]float64, n),
	}
	for i := 0; i < n; i++ {
		s.Time[i] = float64(i)
		s.Velocity[i] = velocity
		s.Grade[i] = grade
	}
	return s
}

func TestPaceNormalizedGradedPace(t *testing.T) {
	view := runView(3.0, 0.1, 120)
	out := Pace(view, 0.5)

	ngp, ok := out.Float("normalized_graded_pace")
	if !ok {
		t.Fatal("normalized_graded_pace missing")
	}
	if math.Abs(ngp-3.15) > 1e-9 {
		t.Errorf("NGP = %v, want 3.15 for velocity=3, grade=0.1, uphill=0.5", ngp)
	}
}

func TestPaceAverageSpeedIgnoresZeroSamples(t *testing.T) {
	s := &model.Stream{
		N:           4,
		Time:        []float64{0, 1, 2, 3},
		HasVelocity: true,
		Velocity:    []float64{0, 2, 4, 0},
	}
	out := Pace(s, 0.5)
	if avg, _ := out.Float("average_speed"); avg != 3 {
		t.Errorf("average_speed = %v, want 3 (mean over velocity > 0)", avg)
	}
	if maxV, _ := out.Float("max_speed"); maxV != 4 {
		t.Errorf("max_speed = %v, want 4", maxV)
	}
}
