package metrics

import (
	"cycleload/internal/model"
	"cycleload/internal/streamproc"
)

// minDecouplingSamples is the minimum total sample count required before
// power_hr_decoupling and first/second-half EF are computed.
const minDecouplingSamples = 60

// Efficiency computes efficiency_factor, power_hr_decoupling,
// first_half_ef, second_half_ef and variability_index for one view.
func Efficiency(view *model.Stream) model.MetricMap {
	out := model.MetricMap{}
	if !view.HasWatts || !view.HasHeartrate {
		return out
	}

	dt := streamproc.TimeDeltas(view.Time)
	avgPower := streamproc.TimeWeightedMean(view.Watts, dt)
	avgHR := streamproc.TimeWeightedMean(view.Heartrate, dt)
	np := NormalizedPower(view)

	if avgHR > 0 {
		out["efficiency_factor"] = np / avgHR
	}
	if avgPower > 0 {
		out["variability_index"] = np / avgPower
	}

	n := view.N
	if n < minDecouplingSamples {
		return out
	}

	firstN, secondN := halves(n)
	if firstN == 0 || secondN == 0 {
		return out
	}

	firstEF := efSlice(view, 0, firstN)
	secondEF := efSlice(view, firstN, n)

	out["first_half_ef"] = firstEF
	out["second_half_ef"] = secondEF
	if firstEF > 0 {
		out["power_hr_decoupling"] = (secondEF - firstEF) / firstEF * 100
	}

	return out
}

// efSlice computes the efficiency factor (NP / avg HR) over the
// half-open sample range [lo, hi) of view.
func efSlice(view *model.Stream, lo, hi int) float64 {
	half := &model.Stream{
		N:         hi - lo,
		Time:      reindex(view.Time[lo:hi]),
		HasWatts:  view.HasWatts,
		Watts:     view.Watts[lo:hi],
		HasHeartrate: view.HasHeartrate,
		Heartrate: view.Heartrate[lo:hi],
	}
	dt := streamproc.TimeDeltas(half.Time)
	avgHR := streamproc.TimeWeightedMean(half.Heartrate, dt)
	if avgHR <= 0 {
		return 0
	}
	return NormalizedPower(half) / avgHR
}

// reindex re-pitches a time slice to start at 0 so a half-view's rolling
// windows behave the same as a standalone stream's.
func reindex(t []float64) []float64 {
	if len(t) == 0 {
		return t
	}
	out := make([]float64, len(t))
	base := t[0]
	for i, v := range t {
		out[i] = v - base
	}
	return out
}
