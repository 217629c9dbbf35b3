package threshold

import (
	"testing"
	"time"

	"cycleload/internal/ingest"
)

func d(n int) time.Time { return time.Date(2024, 1, 1+n, 0, 0, 0, 0, time.UTC) }

func TestResolvePicksHighestFTPInWindow(t *testing.T) {
	rows := []ingest.ThresholdRow{
		{Date: d(0), FTP: 240, FTHR: 165},
		{Date: d(10), FTP: 260, FTHR: 170},
		{Date: d(20), FTP: 250, FTHR: 168},
	}
	ftp, fthr, ok := Resolve(rows, d(25), 42)
	if !ok {
		t.Fatal("expected ok=true")
	}
	if ftp != 260 || fthr != 170 {
		t.Errorf("ftp=%v fthr=%v, want 260, 170", ftp, fthr)
	}
}

func TestResolveTiesBrokenByMostRecentDate(t *testing.T) {
	rows := []ingest.ThresholdRow{
		{Date: d(0), FTP: 250, FTHR: 165},
		{Date: d(10), FTP: 250, FTHR: 170},
	}
	ftp, fthr, ok := Resolve(rows, d(15), 42)
	if !ok || ftp != 250 || fthr != 170 {
		t.Errorf("ftp=%v fthr=%v ok=%v, want 250, 170, true (most recent tie-break)", ftp, fthr, ok)
	}
}

func TestResolveEmptyTable(t *testing.T) {
	_, _, ok := Resolve(nil, d(0), 42)
	if ok {
		t.Error("expected ok=false for empty table")
	}
}

func TestResolveNoRowInWindow(t *testing.T) {
	rows := []ingest.ThresholdRow{{Date: d(0), FTP: 250, FTHR: 165}}
	_, _, ok := Resolve(rows, d(100), 10)
	if ok {
		t.Error("expected ok=false when no row falls within the lookback window")
	}
}
