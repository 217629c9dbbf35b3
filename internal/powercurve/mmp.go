// Package powercurve implements the power-duration analytics layer:
// maximal mean power (MMP) extraction across configured durations, and a
// bounded Levenberg-Marquardt fit of the hyperbolic Critical Power / W'
// model to a set of (duration, power) points.
package powercurve

import (
	"fmt"
	"strings"

	"cycleload/internal/model"
	"cycleload/internal/streamproc"
)

// Point is one maximal-mean-power sample: the duration in seconds and the
// best mean power sustained for that long.
type Point struct {
	DurationS int
	PowerW    float64
}

// MMP computes power_curve_{label} for each configured duration that the
// view has enough samples to support.
func MMP(view *model.Stream, intervals []int) model.MetricMap {
	out := model.MetricMap{}
	if !view.HasWatts {
		return out
	}
	for _, d := range intervals {
		best, ok := streamproc.RollingMaxMean(view.Watts, d)
		if !ok {
			continue
		}
		out["power_curve_"+Label(d)] = best
	}
	return out
}

// Points extracts (duration, power) pairs from an MMP metric map, in
// ascending duration order, for use as CP/W' fit input.
func Points(mmp model.MetricMap, intervals []int) []Point {
	points := make([]Point, 0, len(intervals))
	for _, d := range intervals {
		v, ok := mmp.Float("power_curve_" + Label(d))
		if !ok {
			continue
		}
		points = append(points, Point{DurationS: d, PowerW: v})
	}
	return points
}

// Label returns the canonical label for a duration in seconds, e.g. 5 ->
// "5sec", 60 -> "1min", 3600 -> "1hr", 5400 -> "1.5hr".
func Label(d int) string {
	switch {
	case d < 60:
		return fmt.Sprintf("%dsec", d)
	case d < 3600:
		if d%60 == 0 {
			return fmt.Sprintf("%dmin", d/60)
		}
		return fmt.Sprintf("%dsec", d)
	default:
		if d%3600 == 0 {
			return fmt.Sprintf("%dhr", d/3600)
		}
		h := fmt.Sprintf("%.1f", float64(d)/3600)
		h = strings.TrimSuffix(h, ".0")
		return h + "hr"
	}
}
