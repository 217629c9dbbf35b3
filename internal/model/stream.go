package model

// RawStream is the column-oriented shape produced by ingestion, before
// StreamProcessor validates and fills it. A column that was never present
// in the source file has Has<Column> == false and a nil slice; a column
// that is present but has holes carries NaN at the missing positions.
type RawStream struct {
	N int

	HasTime bool
	Time    []float64

	HasWatts bool
	Watts    []float64

	HasHeartrate bool
	Heartrate    []float64

	HasCadence bool
	Cadence    []float64

	HasVelocity bool
	Velocity    []float64 // velocity_smooth

	HasGrade bool
	Grade    []float64 // grade_smooth

	HasAltitude bool
	Altitude    []float64

	HasDistance bool
	Distance    []float64

	HasLatLng bool
	LatLng    []string // e.g. "[45.123,-122.456]"
}

// Stream is a time-aligned, column-oriented view of a processed activity
// recording: a raw view (all samples) or a moving view (stopped samples
// removed, time re-pitched to a contiguous grid). Every present column has
// exactly N entries; absent columns are nil.
type Stream struct {
	N int

	Time   []float64 // seconds; raw view keeps original gaps, moving view is 0,1,2,...
	Moving []bool

	// OriginalTime is only set on a moving view: the Time values it carried
	// before re-pitching, so a caller can still report wall-clock gaps.
	OriginalTime []float64

	HasWatts bool
	Watts    []float64

	HasHeartrate bool
	Heartrate    []float64

	HasCadence bool
	Cadence    []float64

	HasVelocity bool
	Velocity    []float64

	HasGrade bool
	Grade    []float64

	HasAltitude bool
	Altitude    []float64

	HasDistance bool
	Distance    []float64

	HasLatLng bool
	Lat       []float64
	Lng       []float64
}

// Len reports the number of samples in the stream.
func (s *Stream) Len() int {
	if s == nil {
		return 0
	}
	return s.N
}

// SplitResult pairs the raw and moving views of one processed stream along
// with the elapsed and moving durations derived from each.
type SplitResult struct {
	Raw             *Stream
	Moving          *Stream
	RawDurationS    float64
	MovingDurationS float64
}
