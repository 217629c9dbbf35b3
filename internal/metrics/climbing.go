package metrics

import (
	"cycleload/internal/model"
	"cycleload/internal/streamproc"
)

// gradeSteepThresholdPct is the grade, in percent, above which samples
// count toward climbing_power.
const gradeSteepThresholdPct = 4.0

// Climbing computes climbing_time, vam, climbing_power and
// climbing_power_per_kg for a cycling activity's view.
func Climbing(view *model.Stream, riderWeightKG float64) model.MetricMap {
	out := model.MetricMap{}
	if !view.HasAltitude {
		return out
	}

	dt := streamproc.TimeDeltas(view.Time)

	var climbingTime, gain float64
	for i := 1; i < view.N; i++ {
		diff := view.Altitude[i] - view.Altitude[i-1]
		if diff > 0 {
			climbingTime += dt[i]
			gain += diff
		}
	}
	out["climbing_time"] = climbingTime
	if climbingTime > 0 {
		out["vam"] = gain / climbingTime * 3600
	}

	if view.HasWatts && view.HasGrade {
		var num, den float64
		for i := 0; i < view.N; i++ {
			if view.Grade[i] > gradeSteepThresholdPct && view.Watts[i] > 0 {
				num += view.Watts[i] * dt[i]
				den += dt[i]
			}
		}
		if den > 0 {
			climbingPower := num / den
			out["climbing_power"] = climbingPower
			if riderWeightKG > 0 {
				out["climbing_power_per_kg"] = climbingPower / riderWeightKG
			}
		}
	}

	return out
}
