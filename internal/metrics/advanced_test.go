package metrics

import (
	"testing"
)

func TestWPrimeBalanceStaysWithinBounds(t *testing.T) {
	n := 600
	watts := make([]float64, n)
	for i := range watts {
		if i < 60 {
			watts[i] = 450 // well above CP, drains W'
		} else {
			watts[i] = 150 // below CP, recovers
		}
	}
	minFraction, matches := wPrimeBalance(watts, 250, 20000)
	if minFraction < 0 || minFraction > 1 {
		t.Errorf("minFraction = %v, want in [0,1]", minFraction)
	}
	if matches == 0 {
		t.Errorf("expected at least one match-burn event from a 60s surge above CP")
	}
}

func TestEstimatedFTPRequiresTwentyMinutes(t *testing.T) {
	view := constantPowerView(250, 1199)
	if _, ok := estimatedFTP(view); ok {
		t.Errorf("expected no estimated_ftp with <1200 samples")
	}
}

func TestEstimatedFTPFromConstantPower(t *testing.T) {
	view := constantPowerView(250, 1500)
	got, ok := estimatedFTP(view)
	if !ok {
		t.Fatal("expected estimated_ftp to be computed")
	}
	want := 0.95 * 250
	if got < want-0.01 || got > want+0.01 {
		t.Errorf("estimated_ftp = %v, want %v", got, want)
	}
}
