package pipeline

import (
	"math"
	"strconv"
	"time"

	"cycleload/internal/config"
	"cycleload/internal/fitness"
	"cycleload/internal/model"
	"cycleload/internal/output"
	"cycleload/internal/powercurve"
)

// activitySample is one merged-table row's identity plus the inputs the
// fitness recurrence and CP/W' fit need, reparsed from the table directly
// so both existing and newly-analyzed activities are treated uniformly.
type activitySample struct {
	rowIdx int
	id     int64
	date   time.Time
	ftp    float64
	tss    float64
	mmp    map[string]float64
}

// applyFitnessAndCP folds the fitness recurrence and the CP/W' rolling
// window fit over rawTable's full merged history (this run's new
// activities union whatever activities_raw.csv already held), then
// mirrors the resulting columns onto movingTable by activity id so both
// output tables carry the same auxiliary columns.
func applyFitnessAndCP(rawTable, movingTable output.Table, cfg *config.Config) (output.Table, output.Table) {
	samples := parseActivitySamples(rawTable, cfg)
	if samples == nil {
		return rawTable, movingTable
	}

	fitnessSamples := make([]fitness.Sample, len(samples))
	for i, s := range samples {
		fitnessSamples[i] = fitness.Sample{ActivityID: s.id, Date: s.date, TSS: s.tss}
	}
	states := fitness.Compute(fitnessSamples, float64(cfg.CTLDays), float64(cfg.ATLDays))
	stateByID := make(map[int64]model.FitnessState, len(states))
	for _, st := range states {
		stateByID[st.ActivityID] = st
	}

	cpByID := fitCPWindow(samples, cfg)

	ctlCol := ensureColumn(&rawTable, "ctl")
	atlCol := ensureColumn(&rawTable, "atl")
	tsbCol := ensureColumn(&rawTable, "tsb")
	acwrCol := ensureColumn(&rawTable, "acwr")
	cpCol := ensureColumn(&rawTable, "cp")
	wPrimeCol := ensureColumn(&rawTable, "w_prime_fit")
	rSquaredCol := ensureColumn(&rawTable, "cp_r_squared")
	aeiCol := ensureColumn(&rawTable, "aei")

	for _, s := range samples {
		state := stateByID[s.id]
		row := rawTable.Rows[s.rowIdx]
		row[ctlCol] = formatFloat(state.CTL)
		row[atlCol] = formatFloat(state.ATL)
		row[tsbCol] = formatFloat(state.TSB)
		row[acwrCol] = formatFloat(state.ACWR)

		cp := cpByID[s.id]
		row[cpCol] = formatFloat(cp.CP)
		row[wPrimeCol] = formatFloat(cp.WPrime)
		row[rSquaredCol] = formatFloat(cp.RSquared)
		if cfg.RiderWeightKG > 0 && !math.IsNaN(cp.WPrime) {
			row[aeiCol] = formatFloat(cp.WPrime / 1000 / cfg.RiderWeightKG)
		}
	}

	mirrorColumns(&movingTable, rawTable,
		[]string{"ctl", "atl", "tsb", "acwr", "cp", "w_prime_fit", "cp_r_squared", "aei"})

	return rawTable, movingTable
}

func parseActivitySamples(table output.Table, cfg *config.Config) []activitySample {
	idIdx := columnIndex(table.Columns, "id")
	dateIdx := columnIndex(table.Columns, "start_date_local")
	if idIdx < 0 || dateIdx < 0 {
		return nil
	}
	ftpIdx := columnIndex(table.Columns, "ftp")
	tssIdx := columnIndex(table.Columns, "training_stress_score")
	hrTSSIdx := columnIndex(table.Columns, "hr_training_stress")

	mmpCols := mmpColumnsFor(table.Columns, cfg.PowerCurveIntervals)

	samples := make([]activitySample, len(table.Rows))
	for i, r := range table.Rows {
		id, _ := strconv.ParseInt(get(r, idIdx), 10, 64)
		date, err := time.Parse(time.RFC3339, get(r, dateIdx))
		if err != nil {
			date = time.Time{}
		}

		ftp := cfg.FTP
		if f, err := strconv.ParseFloat(get(r, ftpIdx), 64); err == nil && f > 0 {
			ftp = f
		}

		var tss float64
		if v, err := strconv.ParseFloat(get(r, tssIdx), 64); err == nil {
			tss = v
		}
		if tss == 0 {
			if v, err := strconv.ParseFloat(get(r, hrTSSIdx), 64); err == nil {
				tss = v
			}
		}

		mmp := make(map[string]float64, len(mmpCols))
		for _, c := range mmpCols {
			if v, err := strconv.ParseFloat(get(r, c.idx), 64); err == nil {
				mmp[c.name] = v
			}
		}

		samples[i] = activitySample{rowIdx: i, id: id, date: date, ftp: ftp, tss: tss, mmp: mmp}
	}
	return samples
}

// fitCPWindow fits the CP/W' hyperbolic model per activity, aggregating
// the best mean power per duration across every activity whose date falls
// within cp_window_days before (and including) that activity's own date,
// rather than fitting to a single activity's own power-duration curve.
func fitCPWindow(samples []activitySample, cfg *config.Config) map[int64]model.CPModel {
	window := time.Duration(cfg.CPWindowDays) * 24 * time.Hour

	out := make(map[int64]model.CPModel, len(samples))
	for _, s := range samples {
		windowStart := s.date.Add(-window)
		best := make(map[string]float64)
		for _, other := range samples {
			if other.date.After(s.date) || other.date.Before(windowStart) {
				continue
			}
			for name, v := range other.mmp {
				if v > best[name] {
					best[name] = v
				}
			}
		}

		points := make([]powercurve.Point, 0, len(best))
		for _, d := range cfg.PowerCurveIntervals {
			name := "power_curve_" + powercurve.Label(d)
			if v, ok := best[name]; ok && v > 0 {
				points = append(points, powercurve.Point{DurationS: d, PowerW: v})
			}
		}

		out[s.id] = powercurve.Fit(points, s.ftp)
	}
	return out
}

type mmpColumn struct {
	name string
	idx  int
}

func mmpColumnsFor(columns []string, intervals []int) []mmpColumn {
	out := make([]mmpColumn, 0, len(intervals))
	for _, d := range intervals {
		name := "power_curve_" + powercurve.Label(d)
		idx := columnIndex(columns, name)
		if idx < 0 {
			continue
		}
		out = append(out, mmpColumn{name: name, idx: idx})
	}
	return out
}

// mirrorColumns copies the named columns from src onto dst by matching
// activity id, adding any missing columns to dst first.
func mirrorColumns(dst *output.Table, src output.Table, names []string) {
	dstIDIdx := columnIndex(dst.Columns, "id")
	srcIDIdx := columnIndex(src.Columns, "id")
	if dstIDIdx < 0 || srcIDIdx < 0 {
		return
	}

	srcRowByID := make(map[string][]string, len(src.Rows))
	for _, row := range src.Rows {
		srcRowByID[get(row, srcIDIdx)] = row
	}

	srcCol := make(map[string]int, len(names))
	for _, n := range names {
		srcCol[n] = columnIndex(src.Columns, n)
	}
	dstCol := make(map[string]int, len(names))
	for _, n := range names {
		dstCol[n] = ensureColumn(dst, n)
	}

	for i, row := range dst.Rows {
		srcRow, ok := srcRowByID[get(row, dstIDIdx)]
		if !ok {
			continue
		}
		for _, n := range names {
			si := srcCol[n]
			if si < 0 {
				continue
			}
			dst.Rows[i][dstCol[n]] = get(srcRow, si)
		}
	}
}

func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatOptionalFloat(f float64) string {
	if f <= 0 {
		return ""
	}
	return formatFloat(f)
}
