// Package threshold resolves the FTP/FTHR in effect for an activity from a
// historical thresholds table, looking back a configured window and
// falling back to the athlete's configured defaults when no row applies.
package threshold

import (
	"time"

	"cycleload/internal/ingest"
)

// Resolve returns the (ftp, fthr) of the row with the highest ftp within
// lookbackDays before activityDate (inclusive), breaking ties by the most
// recent date. ok is false when the table is empty or no row falls in the
// window, signalling the caller to fall back to configured defaults.
func Resolve(rows []ingest.ThresholdRow, activityDate time.Time, lookbackDays int) (ftp, fthr float64, ok bool) {
	if len(rows) == 0 {
		return 0, 0, false
	}

	windowStart := activityDate.AddDate(0, 0, -lookbackDays)

	var best ingest.ThresholdRow
	found := false
	for _, r := range rows {
		if r.Date.After(activityDate) || r.Date.Before(windowStart) {
			continue
		}
		if !found {
			best = r
			found = true
			continue
		}
		if r.FTP > best.FTP || (r.FTP == best.FTP && r.Date.After(best.Date)) {
			best = r
		}
	}
	if !found {
		return 0, 0, false
	}
	return best.FTP, best.FTHR, true
}
