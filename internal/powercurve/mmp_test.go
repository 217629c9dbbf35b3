package powercurve

import (
	"testing"

	"cycleload/internal/model"
)

func TestLabelCanonicalForms(t *testing.T) {
	cases := map[int]string{
		5: "5sec", 60: "1min", 1200: "20min", 3600: "1hr", 5400: "1.5hr",
	}
	for d, want := range cases {
		if got := Label(d); got != want {
			t.Errorf("Label(%d) = %q, want %q", d, got, want)
		}
	}
}

func TestMMPComputesBestRollingMean(t *testing.T) {
	n := 120
	watts := make([]float64, n)
	for i := range watts {
		watts[i] = 100
	}
	for i := 50; i < 60; i++ {
		watts[i] = 500
	}
	view := &model.Stream{N: n, HasWatts: true, Time: seq(n), Watts: watts}

	out := MMP(view, []int{5, 60})
	v, ok := out.Float("power_curve_5sec")
	if !ok {
		t.Fatal("power_curve_5sec missing")
	}
	if v != 500 {
		t.Errorf("power_curve_5sec = %v, want 500", v)
	}
}

func TestMMPSkipsDurationsLongerThanStream(t *testing.T) {
	view := &model.Stream{N: 10, HasWatts: true, Time: seq(10), Watts: make([]float64, 10)}
	out := MMP(view, []int{3600})
	if _, ok := out.Float("power_curve_1hr"); ok {
		t.Errorf("expected power_curve_1hr to be absent for a 10-sample stream")
	}
}

func seq(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i)
	}
	return out
}
