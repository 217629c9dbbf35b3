package metrics

import (
	"cycleload/internal/model"
	"cycleload/internal/streamproc"
)

// TID computes power- and HR-based training-intensity distribution: Z1/Z2/
// Z3 percentages, polarization_index, tdr and a classification tag.
func TID(view *model.Stream, ftp, fthr float64) model.MetricMap {
	out := model.MetricMap{}
	dt := streamproc.TimeDeltas(view.Time)
	total := duration(view)
	if total <= 0 {
		return out
	}

	if view.HasWatts && ftp > 0 {
		z1 := streamproc.DurationWhere(dt, func(i int) bool { return view.Watts[i] < 0.76*ftp })
		z2 := streamproc.DurationWhere(dt, func(i int) bool {
			return view.Watts[i] >= 0.76*ftp && view.Watts[i] < 0.90*ftp
		})
		z3 := streamproc.DurationWhere(dt, func(i int) bool { return view.Watts[i] >= 0.90*ftp })
		fillTID(out, "power", z1, z2, z3, total)
	}

	if view.HasHeartrate && fthr > 0 {
		z1 := streamproc.DurationWhere(dt, func(i int) bool { return view.Heartrate[i] < 0.82*fthr })
		z2 := streamproc.DurationWhere(dt, func(i int) bool {
			return view.Heartrate[i] >= 0.82*fthr && view.Heartrate[i] < 0.94*fthr
		})
		z3 := streamproc.DurationWhere(dt, func(i int) bool { return view.Heartrate[i] >= 0.94*fthr })
		fillTID(out, "hr", z1, z2, z3, total)
	}

	return out
}

func fillTID(out model.MetricMap, prefix string, z1, z2, z3, total float64) {
	p1 := z1 / total * 100
	p2 := z2 / total * 100
	p3 := z3 / total * 100
	out[prefix+"_z1_percentage"] = p1
	out[prefix+"_z2_percentage"] = p2
	out[prefix+"_z3_percentage"] = p3

	if p2 > 0 {
		out[prefix+"_polarization_index"] = (p1 + p3) / p2
	}
	if p3 > 0 {
		out[prefix+"_tdr"] = p1 / p3
	}

	switch {
	case p1 > 75 && p2 < 10:
		out[prefix+"_tid_classification"] = "polarized"
	case p1 > p2 && p2 > p3:
		out[prefix+"_tid_classification"] = "pyramidal"
	default:
		out[prefix+"_tid_classification"] = "threshold"
	}
}
