package zoneedge

import (
	"testing"
	"time"

	"cycleload/internal/model"
)

func d(n int) time.Time { return time.Date(2024, 1, 1+n, 0, 0, 0, 0, time.UTC) }

func TestStampAnchorsOnClosestActivityAndBackfillsOlder(t *testing.T) {
	rows := []Row{
		{ActivityID: 1, Date: d(10)}, // newest
		{ActivityID: 2, Date: d(5)},  // closest to T=day(6)
		{ActivityID: 3, Date: d(1)},  // strictly older, empty
		{ActivityID: 4, Date: d(0), PowerEdges: []float64{1, 2}}, // already has edges
	}
	current := model.ZoneEdges{PowerEdges: []float64{100, 150, 200}, HREdges: []float64{140, 160}}

	out := Stamp(rows, current, d(6))

	if out[1].PowerEdges == nil || out[1].PowerEdges[0] != 100 {
		t.Fatalf("anchor (id 2) should carry current edges, got %+v", out[1])
	}
	if out[2].PowerEdges == nil || out[2].PowerEdges[0] != 100 {
		t.Errorf("strictly older empty row (id 3) should inherit edges, got %+v", out[2])
	}
	if out[3].PowerEdges[0] != 1 {
		t.Errorf("row with pre-existing edges should not be overwritten, got %+v", out[3])
	}
	if out[0].PowerEdges != nil {
		t.Errorf("row newer than anchor should be untouched, got %+v", out[0])
	}
}
