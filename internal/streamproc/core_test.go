package streamproc

import "testing"

func TestTimeDeltasExactArithmetic(t *testing.T) {
	time := []float64{0, 1, 2, 5, 6}
	dt := TimeDeltas(time)
	want := []float64{1, 1, 1, 3, 1}
	if len(dt) != len(want) {
		t.Fatalf("len(dt) = %d, want %d", len(dt), len(want))
	}
	for i := range want {
		if dt[i] != want[i] {
			t.Errorf("dt[%d] = %v, want %v", i, dt[i], want[i])
		}
	}
}

func TestTimeDeltasSingleSample(t *testing.T) {
	dt := TimeDeltas([]float64{42})
	if len(dt) != 1 || dt[0] != 1.0 {
		t.Errorf("dt = %v, want [1.0]", dt)
	}
}

func TestTimeDeltasNeverClipsUpward(t *testing.T) {
	dt := TimeDeltas([]float64{0, 10})
	if dt[1] != 10 {
		t.Errorf("dt[1] = %v, want 10 (gaps must not be clipped upward)", dt[1])
	}
}

func TestTimeWeightedMeanExactExample(t *testing.T) {
	values := []float64{100, 200, 150}
	dt := []float64{1, 1, 2}
	got := TimeWeightedMean(values, dt)
	want := (100*1.0 + 200*1.0 + 150*2.0) / (1.0 + 1.0 + 2.0)
	if got != want {
		t.Errorf("TimeWeightedMean = %v, want %v", got, want)
	}
}

func TestTimeWeightedMeanEmpty(t *testing.T) {
	if got := TimeWeightedMean(nil, nil); got != 0 {
		t.Errorf("TimeWeightedMean(empty) = %v, want 0", got)
	}
}

func TestRollingMeanBySamples(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	got := RollingMeanBySamples(values, 2)
	want := []float64{1.5, 2.5, 3.5, 4.5}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRollingMeanBySamplesTooShort(t *testing.T) {
	if got := RollingMeanBySamples([]float64{1, 2}, 5); got != nil {
		t.Errorf("expected nil for insufficient samples, got %v", got)
	}
}

func TestRollingMaxMean(t *testing.T) {
	values := []float64{100, 100, 300, 300, 100}
	best, ok := RollingMaxMean(values, 2)
	if !ok {
		t.Fatal("expected ok=true")
	}
	if best != 300 {
		t.Errorf("best = %v, want 300", best)
	}
}

func TestDurationWhere(t *testing.T) {
	dt := []float64{1, 1, 1, 1}
	total := DurationWhere(dt, func(i int) bool { return i%2 == 0 })
	if total != 2 {
		t.Errorf("total = %v, want 2", total)
	}
}
