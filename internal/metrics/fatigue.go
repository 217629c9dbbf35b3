package metrics

import (
	"fmt"
	"math"

	"cycleload/internal/model"
	"cycleload/internal/streamproc"
)

// minFatigueDurationS is the minimum view duration, in seconds, below
// which FatigueCalculator does not run.
const minFatigueDurationS = 3600

// defaultFatigueIntervalS is the default non-overlapping interval length
// used for the interval_{d}s_decay_rate family of metrics.
const defaultFatigueIntervalS = 300

// Fatigue computes fatigue_index, power_drift, power_coefficient_variation,
// power_sustainability_index and interval-based decay metrics for one
// view. Returns an empty map for activities shorter than one hour.
func Fatigue(view *model.Stream, intervalS int) model.MetricMap {
	out := model.MetricMap{}
	if !view.HasWatts || duration(view) < minFatigueDurationS {
		return out
	}

	dt := streamproc.TimeDeltas(view.Time)
	n := view.N
	firstN, secondN := halves(n)
	if firstN == 0 || secondN == 0 {
		return out
	}

	firstPower := streamproc.TimeWeightedMean(view.Watts[:firstN], dt[:firstN])
	secondPower := streamproc.TimeWeightedMean(view.Watts[firstN:], dt[firstN:])

	if firstPower > 0 {
		out["fatigue_index"] = (firstPower - secondPower) / firstPower * 100
		out["power_drift"] = (secondPower - firstPower) / firstPower * 100
	}

	mean, std, count := meanAndStd(view.Watts, positivePower)
	if count > 0 && mean > 0 {
		cv := std / mean * 100
		out["power_coefficient_variation"] = cv
		out["power_sustainability_index"] = math.Max(0, 100-cv)
	}

	if intervalS <= 0 {
		intervalS = defaultFatigueIntervalS
	}
	addIntervalMetrics(out, view, dt, intervalS)

	return out
}

// addIntervalMetrics splits the view into non-overlapping intervals of
// intervalS seconds and reports the decay rate, linear power trend, and
// first/last interval average power.
func addIntervalMetrics(out model.MetricMap, view *model.Stream, dt []float64, intervalS int) {
	powers := intervalPowers(view, dt, intervalS)
	if len(powers) < 2 {
		return
	}

	prefix := fmt.Sprintf("interval_%ds", intervalS)
	first := powers[0]
	last := powers[len(powers)-1]
	out[prefix+"_first_power"] = first
	out[prefix+"_last_power"] = last
	if first > 0 {
		out[prefix+"_decay_rate"] = (first - last) / first * 100
	}
	out[prefix+"_power_trend"] = linearTrendSlope(powers)
}

// intervalPowers returns the time-weighted average power within each
// non-overlapping intervalS-second bucket of the view, in chronological
// order.
func intervalPowers(view *model.Stream, dt []float64, intervalS int) []float64 {
	var powers []float64
	var bucketStart float64
	var values, weights []float64

	elapsed := 0.0
	bucketEdge := float64(intervalS)
	for i := 0; i < view.N; i++ {
		elapsed += dt[i]
		values = append(values, view.Watts[i])
		weights = append(weights, dt[i])
		if elapsed >= bucketEdge {
			powers = append(powers, streamproc.TimeWeightedMean(values, weights))
			values, weights = nil, nil
			bucketStart = elapsed
			bucketEdge = bucketStart + float64(intervalS)
		}
	}
	if len(values) > 0 {
		powers = append(powers, streamproc.TimeWeightedMean(values, weights))
	}
	return powers
}

// linearTrendSlope fits a simple ordinary-least-squares line to
// (index, value) pairs and returns its slope.
func linearTrendSlope(values []float64) float64 {
	n := float64(len(values))
	if n < 2 {
		return 0
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, v := range values {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}
