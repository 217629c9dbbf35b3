// Package fitness implements the longitudinal training-load recurrence:
// per-activity time-based exponential decay of training stress into
// Chronic Training Load, Acute Training Load, Training Stress Balance and
// the Acute:Chronic Workload Ratio.
package fitness

import (
	"math"
	"sort"
	"time"

	"cycleload/internal/model"
)

// Sample is one activity's date and training-stress input to the
// recurrence.
type Sample struct {
	ActivityID int64
	Date       time.Time
	TSS        float64
}

// Compute runs the CTL/ATL/TSB/ACWR recurrence over samples, sorted
// ascending by date with same-day ties broken by activity id. ctlDays and
// atlDays are the chronic/acute time constants (defaults 42, 7). The
// returned states are in the same ascending order as the sort; callers
// wanting the descending-for-export order reverse the slice themselves.
func Compute(samples []Sample, ctlDays, atlDays float64) []model.FitnessState {
	sorted := make([]Sample, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		return sorted[i].ActivityID < sorted[j].ActivityID
	})

	out := make([]model.FitnessState, len(sorted))
	if len(sorted) == 0 {
		return out
	}

	kc := 1 - math.Exp(-1/ctlDays)
	ka := 1 - math.Exp(-1/atlDays)

	ctl := sorted[0].TSS
	atl := sorted[0].TSS
	out[0] = stateFor(sorted[0].ActivityID, ctl, atl)

	for i := 1; i < len(sorted); i++ {
		delta := daysBetween(sorted[i-1].Date, sorted[i].Date)
		if delta < 0 {
			delta = 0
		}
		ctl = ctl*math.Exp(-delta/ctlDays) + sorted[i].TSS*kc
		atl = atl*math.Exp(-delta/atlDays) + sorted[i].TSS*ka
		out[i] = stateFor(sorted[i].ActivityID, ctl, atl)
	}

	return out
}

func stateFor(id int64, ctl, atl float64) model.FitnessState {
	acwr := 0.0
	if ctl > 0 {
		acwr = atl / ctl
	}
	return model.FitnessState{
		ActivityID: id,
		CTL:        ctl,
		ATL:        atl,
		TSB:        ctl - atl,
		ACWR:       acwr,
	}
}

// daysBetween returns the whole number of 24-hour days elapsed between two
// timestamps, truncated toward zero, as a float so it can scale the
// exponential decay directly.
func daysBetween(a, b time.Time) float64 {
	return math.Trunc(b.Sub(a).Hours() / 24)
}
