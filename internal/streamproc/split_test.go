package streamproc

import (
	"testing"

	"cycleload/internal/model"
)

func TestSplitMovingViewIsContiguous(t *testing.T) {
	s := &model.Stream{
		N:        6,
		Time:     []float64{0, 1, 2, 10, 11, 12},
		Moving:   []bool{true, true, true, false, true, true},
		HasWatts: true,
		Watts:    []float64{100, 110, 120, 130, 140, 150},
	}

	result := Split(s)

	if result.Moving.N != 5 {
		t.Fatalf("moving view N = %d, want 5", result.Moving.N)
	}
	for i, v := range result.Moving.Time {
		if v != float64(i) {
			t.Errorf("moving.Time[%d] = %v, want %v", i, v, float64(i))
		}
	}
	wantWatts := []float64{100, 110, 120, 140, 150}
	for i, w := range wantWatts {
		if result.Moving.Watts[i] != w {
			t.Errorf("moving.Watts[%d] = %v, want %v", i, result.Moving.Watts[i], w)
		}
	}
	wantOriginal := []float64{0, 1, 2, 11, 12}
	for i, v := range wantOriginal {
		if result.Moving.OriginalTime[i] != v {
			t.Errorf("moving.OriginalTime[%d] = %v, want %v", i, result.Moving.OriginalTime[i], v)
		}
	}
}

func TestSplitRawViewIsUnchanged(t *testing.T) {
	s := &model.Stream{
		N:      3,
		Time:   []float64{0, 1, 2},
		Moving: []bool{true, false, true},
	}
	result := Split(s)
	if result.Raw.N != 3 {
		t.Fatalf("raw view N = %d, want 3", result.Raw.N)
	}
	for i, v := range s.Time {
		if result.Raw.Time[i] != v {
			t.Errorf("raw.Time[%d] = %v, want %v", i, result.Raw.Time[i], v)
		}
	}
}

func TestSplitEmptyStream(t *testing.T) {
	s := &model.Stream{N: 0, Time: []float64{}, Moving: []bool{}}
	result := Split(s)
	if result.RawDurationS != 0 || result.MovingDurationS != 0 {
		t.Errorf("expected zero durations for empty stream, got raw=%v moving=%v", result.RawDurationS, result.MovingDurationS)
	}
}

func TestSplitMovingDurationClipsGapsToTwoSeconds(t *testing.T) {
	s := &model.Stream{
		N:      3,
		Time:   []float64{0, 1, 20},
		Moving: []bool{true, true, true},
	}
	result := Split(s)
	if result.MovingDurationS != 3 {
		t.Errorf("MovingDurationS = %v, want 3 (1 + clip(19,0,2)=2)", result.MovingDurationS)
	}
}
