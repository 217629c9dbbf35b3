package metrics

import (
	"math"

	"cycleload/internal/model"
	"cycleload/internal/streamproc"
)

// minNPSamples is the minimum count of valid watts>0 samples required
// before NormalizedPower will compute a non-zero result.
const minNPSamples = 30

// NormalizedPower computes ⟨(30s rolling mean watts)^4⟩^(1/4), the outer
// mean being time-weighted. Requires at least 30 valid watts>0 samples.
func NormalizedPower(view *model.Stream) float64 {
	if !view.HasWatts {
		return 0
	}
	valid := 0
	for _, w := range view.Watts {
		if w > 0 {
			valid++
		}
	}
	if valid < minNPSamples {
		return 0
	}

	rolling := streamproc.RollingMeanBySeconds(view.Watts, 30)
	if len(rolling) == 0 {
		return 0
	}

	fourth := make([]float64, len(rolling))
	for i, m := range rolling {
		fourth[i] = m * m * m * m
	}

	dt := streamproc.TimeDeltas(view.Time)
	// rolling[i] corresponds to the window ending at sample i+29; align Δt
	// to the same offset.
	offset := len(view.Time) - len(rolling)
	alignedDt := dt
	if offset > 0 && offset <= len(dt) {
		alignedDt = dt[offset:]
	}

	meanFourth := streamproc.TimeWeightedMean(fourth, alignedDt)
	if meanFourth <= 0 {
		return 0
	}
	return math.Pow(meanFourth, 0.25)
}

// Power computes average_power, max_power, power_per_kg, normalized_power,
// intensity_factor and training_stress_score for one view.
func Power(view *model.Stream, ftp, riderWeightKG float64) model.MetricMap {
	out := model.MetricMap{}
	if !view.HasWatts {
		return out
	}

	dt := streamproc.TimeDeltas(view.Time)
	avgPower := streamproc.TimeWeightedMean(view.Watts, dt)
	out["average_power"] = avgPower
	out["max_power"] = maxWhere(view.Watts, positivePower)

	if riderWeightKG > 0 {
		out["power_per_kg"] = avgPower / riderWeightKG
	}

	np := NormalizedPower(view)
	out["normalized_power"] = np

	if ftp > 0 {
		intensityFactor := np / ftp
		out["intensity_factor"] = intensityFactor

		durationS := duration(view)
		out["training_stress_score"] = np * intensityFactor * durationS / (ftp * 3600) * 100
	}

	return out
}
