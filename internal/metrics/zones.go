package metrics

import (
	"fmt"

	"cycleload/internal/model"
	"cycleload/internal/streamproc"
)

// pctFTPPowerEdges are the default 7-zone %FTP power-zone right-edges,
// used when LT1/LT2 power are not configured.
var pctFTPPowerEdges = []float64{0.55, 0.75, 0.90, 1.05, 1.20, 1.50}

// pctFTHRHREdges are the default 5-zone %FTHR heart-rate-zone right-edges,
// used when LT1/LT2 HR are not configured. Zone 1's upper bound is fixed
// at 82% rather than 85%, to agree with the TID HR bands, which use 82%
// as their own Z1/Z2 boundary.
var pctFTHRHREdges = []float64{0.82, 0.95, 1.05, 1.20}

// ComputePowerZoneEdges returns the six right-edges of the 7-zone power
// layout: the LT-based layout when both lt1Power and lt2Power are
// configured, otherwise the %FTP layout. The LT-based layout anchors
// zones 2 and 5 on the athlete's actual LT1/LT2 breakpoints and scales the
// remaining edges off LT2 in the same proportions as the %FTP layout, so
// the two layouts agree in shape when LT1/LT2 happen to sit at the
// %FTP layout's own breakpoints.
func ComputePowerZoneEdges(ftp, lt1Power, lt2Power float64) []float64 {
	if lt1Power > 0 && lt2Power > 0 {
		return []float64{
			0.55 * lt2Power,
			lt1Power,
			0.90 * lt2Power,
			lt2Power,
			1.20 * lt2Power,
			1.50 * lt2Power,
		}
	}
	edges := make([]float64, len(pctFTPPowerEdges))
	for i, p := range pctFTPPowerEdges {
		edges[i] = p * ftp
	}
	return edges
}

// ComputeHREdges returns the four right-edges of the 5-zone HR layout: the
// LT-based layout when both lt1HR and lt2HR are configured, otherwise the
// %FTHR layout (see pctFTHRHREdges for why its zone 1 edge is 82%, not
// 85%).
func ComputeHREdges(fthr, lt1HR, lt2HR float64) []float64 {
	if lt1HR > 0 && lt2HR > 0 {
		return []float64{
			0.82 * lt2HR,
			lt1HR,
			lt2HR,
			1.02 * lt2HR,
		}
	}
	edges := make([]float64, len(pctFTHRHREdges))
	for i, p := range pctFTHRHREdges {
		edges[i] = p * fthr
	}
	return edges
}

// Zones computes time_in_zone percentages for both power and HR zones
// against a view, given the already-resolved zone edges.
func Zones(view *model.Stream, powerEdges, hrEdges []float64) model.MetricMap {
	out := model.MetricMap{}
	dt := streamproc.TimeDeltas(view.Time)
	total := duration(view)
	if total <= 0 {
		return out
	}

	if view.HasWatts {
		for i := 0; i < len(powerEdges)+1; i++ {
			lo, hi := zoneBounds(powerEdges, i)
			t := streamproc.DurationWhere(dt, func(idx int) bool {
				return inZone(view.Watts[idx], lo, hi)
			})
			out[fmt.Sprintf("power_z%d_percentage", i+1)] = t / total * 100
		}
	}

	if view.HasHeartrate {
		for i := 0; i < len(hrEdges)+1; i++ {
			lo, hi := zoneBounds(hrEdges, i)
			t := streamproc.DurationWhere(dt, func(idx int) bool {
				return inZone(view.Heartrate[idx], lo, hi)
			})
			out[fmt.Sprintf("hr_z%d_percentage", i+1)] = t / total * 100
		}
	}

	return out
}

// zoneBounds returns the half-open [lo, hi) bounds of zone index i (0
// based) given its edge vector; the last zone is unbounded above.
func zoneBounds(edges []float64, i int) (lo, hi float64) {
	if i == 0 {
		lo = 0
	} else {
		lo = edges[i-1]
	}
	if i < len(edges) {
		hi = edges[i]
	} else {
		hi = inf
	}
	return lo, hi
}

const inf = 1e18

func inZone(v, lo, hi float64) bool {
	return v >= lo && v < hi
}
