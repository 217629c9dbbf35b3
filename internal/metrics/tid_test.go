package metrics

import (
	"math"
	"testing"

	"cycleload/internal/model"
)

func TestTIDPowerPercentagesSumTo100(t *testing.T) {
	n := 300
	s := &model.Stream{N: n, HasWatts: true, Time: make([]float64, n), Watts: make([]float64, n)}
	for i := 0; i < n; i++ {
		s.Time[i] = float64(i)
		switch {
		case i < 150:
			s.Watts[i] = 100 // Z1
		case i < 250:
			s.Watts[i] = 220 // Z2
		default:
			s.Watts[i] = 280 // Z3
		}
	}

	out := TID(s, 250, 0)
	z1, _ := out.Float("power_z1_percentage")
	z2, _ := out.Float("power_z2_percentage")
	z3, _ := out.Float("power_z3_percentage")

	sum := z1 + z2 + z3
	if math.Abs(sum-100) > 1e-6 {
		t.Errorf("z1+z2+z3 = %v, want 100", sum)
	}
}

func TestTIDClassificationPolarized(t *testing.T) {
	out := model.MetricMap{}
	fillTID(out, "power", 80, 5, 15, 100)
	if out["power_tid_classification"] != "polarized" {
		t.Errorf("classification = %v, want polarized", out["power_tid_classification"])
	}
}

func TestTIDClassificationPyramidal(t *testing.T) {
	out := model.MetricMap{}
	fillTID(out, "power", 60, 30, 10, 100)
	if out["power_tid_classification"] != "pyramidal" {
		t.Errorf("classification = %v, want pyramidal", out["power_tid_classification"])
	}
}

func TestTIDClassificationThreshold(t *testing.T) {
	out := model.MetricMap{}
	fillTID(out, "power", 30, 50, 20, 100)
	if out["power_tid_classification"] != "threshold" {
		t.Errorf("classification = %v, want threshold", out["power_tid_classification"])
	}
}
