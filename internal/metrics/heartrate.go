package metrics

import (
	"cycleload/internal/model"
	"cycleload/internal/streamproc"
)

// HeartRate computes average_hr, max_hr and hr_training_stress for one
// view.
func HeartRate(view *model.Stream, fthr float64) model.MetricMap {
	out := model.MetricMap{}
	if !view.HasHeartrate {
		return out
	}

	dt := streamproc.TimeDeltas(view.Time)
	avgHR := streamproc.TimeWeightedMean(view.Heartrate, dt)
	out["average_hr"] = avgHR
	out["max_hr"] = maxWhere(view.Heartrate, func(v float64) bool { return v > 0 })

	if fthr > 0 {
		durationS := duration(view)
		ratio := avgHR / fthr
		out["hr_training_stress"] = ratio * ratio * durationS / 3600 * 100
	}

	return out
}
