package fitness

import (
	"math"
	"testing"
	"time"
)

func day(n int) time.Time {
	return time.Date(2024, 1, 1+n, 0, 0, 0, 0, time.UTC)
}

func TestComputeSeedsFromFirstTSS(t *testing.T) {
	samples := []Sample{{ActivityID: 1, Date: day(0), TSS: 80}}
	states := Compute(samples, 42, 7)
	if states[0].CTL != 80 || states[0].ATL != 80 {
		t.Errorf("CTL=%v ATL=%v, want both 80", states[0].CTL, states[0].ATL)
	}
	if states[0].TSB != 0 {
		t.Errorf("TSB = %v, want 0 when CTL==ATL", states[0].TSB)
	}
}

func TestComputeExactRecurrence(t *testing.T) {
	samples := []Sample{
		{ActivityID: 1, Date: day(0), TSS: 100},
		{ActivityID: 2, Date: day(1), TSS: 50},
	}
	states := Compute(samples, 42, 7)

	kc := 1 - math.Exp(-1.0/42)
	ka := 1 - math.Exp(-1.0/7)
	wantCTL := 100*math.Exp(-1.0/42) + 50*kc
	wantATL := 100*math.Exp(-1.0/7) + 50*ka

	if math.Abs(states[1].CTL-wantCTL) > 1e-9 {
		t.Errorf("CTL = %v, want %v", states[1].CTL, wantCTL)
	}
	if math.Abs(states[1].ATL-wantATL) > 1e-9 {
		t.Errorf("ATL = %v, want %v", states[1].ATL, wantATL)
	}
}

func TestComputeSevenDayDecay(t *testing.T) {
	samples := make([]Sample, 7)
	for i := range samples {
		samples[i] = Sample{ActivityID: int64(i + 1), Date: day(i)}
	}
	samples[0].TSS = 100

	states := Compute(samples, 42, 7)
	last := states[len(states)-1]

	wantATL := 100 * math.Exp(-6.0/7)
	wantCTL := 100 * math.Exp(-6.0/42)
	if math.Abs(last.ATL-wantATL) > 1e-6 {
		t.Errorf("ATL on day 7 = %v, want %v", last.ATL, wantATL)
	}
	if math.Abs(last.CTL-wantCTL) > 1e-6 {
		t.Errorf("CTL on day 7 = %v, want %v", last.CTL, wantCTL)
	}
}

func TestComputeSameDaySecondActivityAddsStep(t *testing.T) {
	samples := []Sample{
		{ActivityID: 1, Date: day(0), TSS: 100},
		{ActivityID: 2, Date: day(0), TSS: 50},
	}
	states := Compute(samples, 42, 7)

	ka := 1 - math.Exp(-1.0/7)
	wantATL := 100 + 50*ka // Δ=0 days: no decay, just the k_a step
	if math.Abs(states[1].ATL-wantATL) > 1e-9 {
		t.Errorf("same-day ATL = %v, want %v", states[1].ATL, wantATL)
	}
}

func TestComputeACWRZeroWhenCTLZero(t *testing.T) {
	samples := []Sample{{ActivityID: 1, Date: day(0), TSS: 0}}
	states := Compute(samples, 42, 7)
	if states[0].ACWR != 0 {
		t.Errorf("ACWR = %v, want 0 when CTL is 0", states[0].ACWR)
	}
}

func TestComputeSameDayTiesBrokenByActivityID(t *testing.T) {
	samples := []Sample{
		{ActivityID: 5, Date: day(0), TSS: 10},
		{ActivityID: 2, Date: day(0), TSS: 20},
	}
	states := Compute(samples, 42, 7)
	if states[0].ActivityID != 2 || states[1].ActivityID != 5 {
		t.Errorf("expected ascending activity-id order for same-day ties, got %d then %d",
			states[0].ActivityID, states[1].ActivityID)
	}
}
