// Package streamproc implements the stream segmentation layer: cleaning a
// raw stream into validated columns (StreamProcessor), splitting it into
// raw and moving views (StreamSplitter), and the shared time-weighted
// primitives every calculator builds on (MetricCore).
package streamproc

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"cycleload/internal/model"
)

// GapThreshold is the inter-sample gap, in seconds, above which a sample is
// treated as the resume point after an auto-pause.
const GapThreshold = 2.0

// ErrMissingEssentials is returned when a stream has neither a time column
// nor any other way to derive the moving flag.
var ErrMissingEssentials = errors.New("stream processor: missing time column and no fallback for deriving moving")

// Process validates and cleans a raw stream into a model.Stream with a
// derived moving column. It never drops samples; StreamSplitter does that.
func Process(raw *model.RawStream) (*model.Stream, error) {
	n := raw.N
	if !raw.HasTime && !raw.HasVelocity {
		return nil, ErrMissingEssentials
	}

	s := &model.Stream{N: n}

	if raw.HasTime {
		s.Time = fillForwardBackwardZero(raw.Time)
	} else {
		// No time column: assume a regular 1 Hz grid.
		s.Time = make([]float64, n)
		for i := range s.Time {
			s.Time[i] = float64(i)
		}
	}

	if raw.HasWatts {
		s.HasWatts = true
		s.Watts = fillZero(raw.Watts)
	}
	if raw.HasCadence {
		s.HasCadence = true
		s.Cadence = fillZero(raw.Cadence)
	}
	if raw.HasVelocity {
		s.HasVelocity = true
		s.Velocity = fillForwardBackwardZero(raw.Velocity)
	}
	if raw.HasGrade {
		s.HasGrade = true
		s.Grade = fillForwardBackwardZero(raw.Grade)
	}
	if raw.HasDistance {
		s.HasDistance = true
		s.Distance = fillForwardBackwardZero(raw.Distance)
	}
	if raw.HasAltitude {
		s.HasAltitude = true
		s.Altitude = fillForwardBackwardZero(raw.Altitude)
	}
	if raw.HasHeartrate {
		s.HasHeartrate = true
		s.Heartrate = fillForwardBackwardZero(raw.Heartrate)
	}
	if raw.HasLatLng {
		s.HasLatLng = true
		s.Lat = make([]float64, n)
		s.Lng = make([]float64, n)
		for i, v := range raw.LatLng {
			lat, lng, ok := parseLatLng(v)
			if !ok {
				s.Lat[i] = math.NaN()
				s.Lng[i] = math.NaN()
				continue
			}
			s.Lat[i] = lat
			s.Lng[i] = lng
		}
	}

	s.Moving = deriveMoving(raw, s, n)

	return s, nil
}

func deriveMoving(raw *model.RawStream, s *model.Stream, n int) []bool {
	moving := make([]bool, n)
	for i := range moving {
		moving[i] = true
	}

	switch {
	case raw.HasTime:
		for i := 1; i < n; i++ {
			if s.Time[i]-s.Time[i-1] > GapThreshold {
				moving[i] = false
			}
		}
	case raw.HasVelocity:
		for i := 0; i < n; i++ {
			moving[i] = s.Velocity[i] > 0.5
		}
	}
	return moving
}

// fillZero replaces NaN with 0; used for power/cadence, which have no
// physical meaning to interpolate across a gap.
func fillZero(col []float64) []float64 {
	out := make([]float64, len(col))
	for i, v := range col {
		if math.IsNaN(v) {
			out[i] = 0
			continue
		}
		out[i] = v
	}
	return out
}

// fillForwardBackwardZero forward-fills from the last valid sample, then
// back-fills any still-missing leading run, then zero-fills anything left
// (an entirely empty column).
func fillForwardBackwardZero(col []float64) []float64 {
	out := make([]float64, len(col))
	copy(out, col)

	last := math.NaN()
	for i := range out {
		if math.IsNaN(out[i]) {
			if !math.IsNaN(last) {
				out[i] = last
			}
			continue
		}
		last = out[i]
	}

	next := math.NaN()
	for i := len(out) - 1; i >= 0; i-- {
		if math.IsNaN(out[i]) {
			if !math.IsNaN(next) {
				out[i] = next
			}
			continue
		}
		next = out[i]
	}

	for i := range out {
		if math.IsNaN(out[i]) {
			out[i] = 0
		}
	}
	return out
}

// parseLatLng splits a "[lat,lng]"-style string into its two components.
// On malformed input it reports ok=false and the caller emits NaN instead.
func parseLatLng(s string) (lat, lng float64, ok bool) {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "[]()")
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, false
	}
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lng, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return lat, lng, true
}
