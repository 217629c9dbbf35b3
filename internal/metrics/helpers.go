// Package metrics implements the per-view calculators: power, heart rate,
// efficiency, pace, climbing, advanced power (W' balance, match burns,
// cardiac drift), zones, training-intensity distribution, and fatigue.
// Every calculator takes a single model.Stream view (raw or moving) and
// returns a flat, unprefixed metric map.
package metrics

import (
	"math"

	"cycleload/internal/model"
	"cycleload/internal/streamproc"
)

func maxWhere(values []float64, pred func(v float64) bool) float64 {
	var best float64
	found := false
	for _, v := range values {
		if !pred(v) {
			continue
		}
		if !found || v > best {
			best = v
			found = true
		}
	}
	return best
}

// halves splits n samples by index count: first = [0, n/2), second =
// [n/2, n). For odd n the extra sample goes to the second half.
func halves(n int) (int, int) {
	mid := n / 2
	return mid, n - mid
}

func meanAndStd(values []float64, pred func(v float64) bool) (mean, std float64, count int) {
	var sum float64
	for _, v := range values {
		if pred(v) {
			sum += v
			count++
		}
	}
	if count == 0 {
		return 0, 0, 0
	}
	mean = sum / float64(count)

	var sqDiff float64
	for _, v := range values {
		if pred(v) {
			d := v - mean
			sqDiff += d * d
		}
	}
	std = math.Sqrt(sqDiff / float64(count))
	return mean, std, count
}

func positivePower(v float64) bool { return v > 0 }

// duration returns the total Δt-weighted duration of a view.
func duration(view *model.Stream) float64 {
	dt := streamproc.TimeDeltas(view.Time)
	var total float64
	for _, d := range dt {
		total += d
	}
	return total
}
