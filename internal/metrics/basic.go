package metrics

import (
	"cycleload/internal/model"
	"cycleload/internal/streamproc"
)

// Basic computes the simple aggregates every activity type shares:
// average_cadence, max_cadence, average_speed and max_speed. Averages are
// time-weighted; maxima ignore zero samples. For runs the PaceCalculator's
// own speed definitions take precedence when both run on a view.
func Basic(view *model.Stream) model.MetricMap {
	out := model.MetricMap{}
	dt := streamproc.TimeDeltas(view.Time)

	if view.HasCadence {
		if anyPositive(view.Cadence) {
			out["average_cadence"] = streamproc.TimeWeightedMean(view.Cadence, dt)
			out["max_cadence"] = maxWhere(view.Cadence, func(v float64) bool { return v > 0 })
		} else {
			out["average_cadence"] = 0.0
			out["max_cadence"] = 0.0
		}
	}

	if view.HasVelocity {
		if anyPositive(view.Velocity) {
			out["average_speed"] = streamproc.TimeWeightedMean(view.Velocity, dt)
			out["max_speed"] = maxWhere(view.Velocity, func(v float64) bool { return v > 0 })
		} else {
			out["average_speed"] = 0.0
			out["max_speed"] = 0.0
		}
	}

	return out
}

func anyPositive(values []float64) bool {
	for _, v := range values {
		if v > 0 {
			return true
		}
	}
	return false
}
