// Package ingest parses the ";"-separated CSV inputs — activities,
// per-activity streams, and the optional historical thresholds table —
// into the in-memory shapes the analytics kernel operates on. It performs
// no analytics of its own.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"cycleload/internal/model"
)

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.TrimLeadingSpace = true
	return cr
}

// header indexes a CSV header row by column name, case-sensitively, so
// callers can look up optional columns by name rather than position.
type header map[string]int

func indexHeader(row []string) header {
	h := make(header, len(row))
	for i, name := range row {
		h[strings.TrimSpace(name)] = i
	}
	return h
}

func (h header) get(row []string, name string) (string, bool) {
	i, ok := h[name]
	if !ok || i >= len(row) {
		return "", false
	}
	return strings.TrimSpace(row[i]), true
}

// Activities parses the activities catalog at path.
func Activities(path string) ([]model.Activity, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening activities file: %w", err)
	}
	defer f.Close()

	r := newReader(f)
	headerRow, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading activities header: %w", err)
	}
	h := indexHeader(headerRow)
	for _, required := range []string{"id", "type", "start_date", "start_date_local"} {
		if _, ok := h[required]; !ok {
			return nil, fmt.Errorf("activities file missing required column %q", required)
		}
	}

	var out []model.Activity
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading activities row: %w", err)
		}

		idStr, _ := h.get(row, "id")
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing activity id %q: %w", idStr, err)
		}

		typeStr, _ := h.get(row, "type")
		startDateStr, _ := h.get(row, "start_date")
		startDate, err := time.Parse(time.RFC3339, startDateStr)
		if err != nil {
			return nil, fmt.Errorf("activity %d: parsing start_date %q: %w", id, startDateStr, err)
		}
		startLocalStr, _ := h.get(row, "start_date_local")
		startLocal, err := time.Parse(time.RFC3339, startLocalStr)
		if err != nil {
			startLocal = startDate
		}

		a := model.Activity{
			ID:             id,
			Type:           model.ActivityType(typeStr),
			StartDate:      startDate,
			StartDateLocal: startLocal,
		}
		if v, ok := h.get(row, "name"); ok {
			a.Name = v
		}
		a.Distance = optionalFloat(h, row, "distance")
		a.MovingTime = int(optionalFloat(h, row, "moving_time"))
		a.ElapsedTime = int(optionalFloat(h, row, "elapsed_time"))
		a.ElevationGain = optionalFloat(h, row, "total_elevation_gain")
		a.AverageSpeed = optionalFloat(h, row, "average_speed")
		a.MaxSpeed = optionalFloat(h, row, "max_speed")

		out = append(out, a)
	}
	return out, nil
}

func optionalFloat(h header, row []string, name string) float64 {
	v, ok := h.get(row, name)
	if !ok || v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}

// StreamPath returns the conventional path for an activity's stream file.
func StreamPath(streamsDir string, activityID int64) string {
	return filepath.Join(streamsDir, fmt.Sprintf("stream_%d.csv", activityID))
}

// Stream parses one activity's stream file into a RawStream. Columns
// absent from the header leave the corresponding Has<X> flag false.
func Stream(path string) (*model.RawStream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening stream file: %w", err)
	}
	defer f.Close()

	r := newReader(f)
	headerRow, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading stream header: %w", err)
	}
	h := indexHeader(headerRow)

	rs := &model.RawStream{}
	rs.HasTime = hasCol(h, "time")
	rs.HasWatts = hasCol(h, "watts")
	rs.HasHeartrate = hasCol(h, "heartrate")
	rs.HasCadence = hasCol(h, "cadence")
	rs.HasVelocity = hasCol(h, "velocity_smooth")
	rs.HasGrade = hasCol(h, "grade_smooth")
	rs.HasAltitude = hasCol(h, "altitude")
	rs.HasDistance = hasCol(h, "distance")
	rs.HasLatLng = hasCol(h, "latlng")

	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading stream row: %w", err)
		}
		rows = append(rows, row)
	}

	n := len(rows)
	rs.N = n
	alloc := func(has bool) []float64 {
		if !has || n == 0 {
			return nil
		}
		s := make([]float64, n)
		return s
	}
	rs.Time = alloc(rs.HasTime)
	rs.Watts = alloc(rs.HasWatts)
	rs.Heartrate = alloc(rs.HasHeartrate)
	rs.Cadence = alloc(rs.HasCadence)
	rs.Velocity = alloc(rs.HasVelocity)
	rs.Grade = alloc(rs.HasGrade)
	rs.Altitude = alloc(rs.HasAltitude)
	rs.Distance = alloc(rs.HasDistance)
	if rs.HasLatLng && n > 0 {
		rs.LatLng = make([]string, n)
	}

	parseCol := func(col []float64, has bool, name string, row []string, i int) {
		if !has {
			return
		}
		v, ok := h.get(row, name)
		if !ok || v == "" {
			col[i] = math.NaN()
			return
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			col[i] = math.NaN()
			return
		}
		col[i] = f
	}

	for i, row := range rows {
		parseCol(rs.Time, rs.HasTime, "time", row, i)
		parseCol(rs.Watts, rs.HasWatts, "watts", row, i)
		parseCol(rs.Heartrate, rs.HasHeartrate, "heartrate", row, i)
		parseCol(rs.Cadence, rs.HasCadence, "cadence", row, i)
		parseCol(rs.Velocity, rs.HasVelocity, "velocity_smooth", row, i)
		parseCol(rs.Grade, rs.HasGrade, "grade_smooth", row, i)
		parseCol(rs.Altitude, rs.HasAltitude, "altitude", row, i)
		parseCol(rs.Distance, rs.HasDistance, "distance", row, i)
		if rs.HasLatLng {
			if v, ok := h.get(row, "latlng"); ok {
				rs.LatLng[i] = v
			}
		}
	}

	return rs, nil
}

// ThresholdRow is one row of the historical thresholds table.
type ThresholdRow struct {
	Date time.Time
	FTP  float64
	FTHR float64
}

// Thresholds parses the optional historical thresholds table. A missing
// file is not an error: it simply yields no rows, leaving ThresholdResolver
// to fall back to the configured values.
func Thresholds(path string) ([]ThresholdRow, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening thresholds file: %w", err)
	}
	defer f.Close()

	r := newReader(f)
	headerRow, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading thresholds header: %w", err)
	}
	h := indexHeader(headerRow)

	var out []ThresholdRow
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading thresholds row: %w", err)
		}
		dateStr, _ := h.get(row, "date")
		d, err := parseFlexibleDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("parsing threshold date %q: %w", dateStr, err)
		}
		out = append(out, ThresholdRow{
			Date: d,
			FTP:  optionalFloat(h, row, "ftp"),
			FTHR: optionalFloat(h, row, "fthr"),
		})
	}
	return out, nil
}

func parseFlexibleDate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format %q", s)
}

func hasCol(h header, name string) bool {
	_, ok := h[name]
	return ok
}

// ParseLatLng splits a "[lat,lng]"-style string into its two components.
// On malformed input it reports ok=false; callers should then emit NaN for
// both columns rather than fail the whole stream.
func ParseLatLng(s string) (lat, lng float64, ok bool) {
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
