// Package zoneedge stamps each historical activity with the right-edges
// of the athlete's current physiological zones, chosen from the activity
// closest to the configuration timestamp and propagated backward in time.
package zoneedge

import (
	"time"

	"cycleload/internal/model"
)

// Row is one activity's zone-edge state: nil PowerEdges/HREdges means the
// column is empty and eligible for backfill.
type Row struct {
	ActivityID int64
	Date       time.Time
	PowerEdges []float64
	HREdges    []float64
}

// Stamp computes the current zone edges, finds the activity closest to
// configTimestamp (the anchor), writes the edges onto it, then backfills
// every strictly-older row whose edge columns are still empty. Rows newer
// than the anchor are left untouched: they may already carry newer edges
// from a previous run.
func Stamp(rows []Row, current model.ZoneEdges, configTimestamp time.Time) []Row {
	if len(rows) == 0 {
		return rows
	}

	out := make([]Row, len(rows))
	copy(out, rows)

	anchor := 0
	best := absDuration(out[0].Date.Sub(configTimestamp))
	for i := 1; i < len(out); i++ {
		d := absDuration(out[i].Date.Sub(configTimestamp))
		if d < best {
			best = d
			anchor = i
		}
	}

	out[anchor].PowerEdges = current.PowerEdges
	out[anchor].HREdges = current.HREdges
	anchorDate := out[anchor].Date

	for i := range out {
		if i == anchor {
			continue
		}
		if !out[i].Date.Before(anchorDate) {
			continue // not strictly older than the anchor
		}
		if out[i].PowerEdges == nil {
			out[i].PowerEdges = current.PowerEdges
		}
		if out[i].HREdges == nil {
			out[i].HREdges = current.HREdges
		}
	}

	return out
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
