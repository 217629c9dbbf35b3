package metrics

import "cycleload/internal/model"

// Pace computes average_speed, max_speed and normalized_graded_pace for a
// running activity's view.
func Pace(view *model.Stream, uphillFactor float64) model.MetricMap {
	out := model.MetricMap{}
	if !view.HasVelocity {
		return out
	}

	var sum float64
	count := 0
	for _, v := range view.Velocity {
		if v > 0 {
			sum += v
			count++
		}
	}
	if count > 0 {
		out["average_speed"] = sum / float64(count)
	}
	out["max_speed"] = maxWhere(view.Velocity, func(v float64) bool { return v > 0 })

	if view.HasGrade {
		var ngpSum float64
		for i, v := range view.Velocity {
			ngpSum += v * (1 + view.Grade[i]*uphillFactor)
		}
		if view.N > 0 {
			out["normalized_graded_pace"] = ngpSum / float64(view.N)
		}
	}

	return out
}
