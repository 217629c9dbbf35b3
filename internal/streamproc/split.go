package streamproc

import "cycleload/internal/model"

// Split produces the raw and moving views of a processed stream. The raw
// view is a straight copy; the moving view drops samples where Moving is
// false, preserves the dropped-aware timestamps under OriginalTime, and
// re-pitches Time to a contiguous 0,1,2,... grid so any rolling operator
// with window w seconds operates over exactly w consecutive samples.
func Split(s *model.Stream) model.SplitResult {
	raw := copyStream(s)

	var movingDuration float64
	idx := make([]int, 0, s.N)
	for i := 0; i < s.N; i++ {
		if s.Moving == nil || s.Moving[i] {
			idx = append(idx, i)
		}
	}
	for i := 1; i < len(idx); i++ {
		dt := s.Time[idx[i]] - s.Time[idx[i-1]]
		if dt < 0 {
			dt = 0
		}
		if dt > 2 {
			dt = 2
		}
		movingDuration += dt
	}

	moving := gatherStream(s, idx)
	if moving != nil {
		moving.OriginalTime = moving.Time
		moving.Time = make([]float64, moving.N)
		for i := range moving.Time {
			moving.Time[i] = float64(i)
		}
		for i := range moving.Moving {
			moving.Moving[i] = true
		}
	}

	var rawDuration float64
	if raw.N > 0 {
		rawDuration = raw.Time[raw.N-1] - raw.Time[0]
	}

	return model.SplitResult{
		Raw:             raw,
		Moving:          moving,
		RawDurationS:    rawDuration,
		MovingDurationS: movingDuration,
	}
}

func copyStream(s *model.Stream) *model.Stream {
	idx := make([]int, s.N)
	for i := range idx {
		idx[i] = i
	}
	return gatherStream(s, idx)
}

// gatherStream builds a new Stream containing only the rows at idx, in
// order, preserving which optional columns are present.
func gatherStream(s *model.Stream, idx []int) *model.Stream {
	n := len(idx)
	out := &model.Stream{N: n}

	out.Time = gatherFloat(s.Time, idx)
	out.Moving = gatherBool(s.Moving, idx)

	if s.HasWatts {
		out.HasWatts = true
		out.Watts = gatherFloat(s.Watts, idx)
	}
	if s.HasHeartrate {
		out.HasHeartrate = true
		out.Heartrate = gatherFloat(s.Heartrate, idx)
	}
	if s.HasCadence {
		out.HasCadence = true
		out.Cadence = gatherFloat(s.Cadence, idx)
	}
	if s.HasVelocity {
		out.HasVelocity = true
		out.Velocity = gatherFloat(s.Velocity, idx)
	}
	if s.HasGrade {
		out.HasGrade = true
		out.Grade = gatherFloat(s.Grade, idx)
	}
	if s.HasAltitude {
		out.HasAltitude = true
		out.Altitude = gatherFloat(s.Altitude, idx)
	}
	if s.HasDistance {
		out.HasDistance = true
		out.Distance = gatherFloat(s.Distance, idx)
	}
	if s.HasLatLng {
		out.HasLatLng = true
		out.Lat = gatherFloat(s.Lat, idx)
		out.Lng = gatherFloat(s.Lng, idx)
	}
	return out
}

func gatherFloat(col []float64, idx []int) []float64 {
	if col == nil {
		return nil
	}
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = col[j]
	}
	return out
}

func gatherBool(col []bool, idx []int) []bool {
	if col == nil {
		return nil
	}
	out := make([]bool, len(idx))
	for i, j := range idx {
		out[i] = col[j]
	}
	return out
}
