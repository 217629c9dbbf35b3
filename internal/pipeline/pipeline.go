// Package pipeline orchestrates one incremental analytics run: load
// existing output tables, select pending activities, analyze each, merge
// the results, run the post-processing passes (zone-edge backpropagation,
// the fitness recurrence, CP/W' fitting), summarize, and persist
// everything atomically.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"cycleload/internal/analyzer"
	"cycleload/internal/config"
	"cycleload/internal/ingest"
	"cycleload/internal/model"
	"cycleload/internal/output"
	"cycleload/internal/repository"
	"cycleload/internal/summary"
	"cycleload/internal/threshold"
)

// ErrNoActivitiesProcessed is returned when the pipeline could not analyze
// any activity, new or previously persisted, and so has nothing to write.
var ErrNoActivitiesProcessed = errors.New("pipeline: no activity could be processed")

// Result reports what one run accomplished: how many activities were
// newly processed, how many were skipped, any per-activity errors, and
// the athlete's training-load state at the end of the run.
type Result struct {
	ActivitiesFetched int
	ActivitiesSkipped int
	Errors            []error
	TrainingLoad      model.FitnessState
}

// Pipeline holds the configuration and logger for one run.
type Pipeline struct {
	Config *config.Config
	Logger *zap.SugaredLogger
}

// enrichedActivity is one activity's metadata plus its raw- and
// moving-view metric maps, carried through post-processing.
type enrichedActivity struct {
	Activity model.Activity
	Raw      model.MetricMap
	Moving   model.MetricMap
	FTP      float64
	FTHR     float64
}

// Run executes one full incremental pass and persists the output tables
// and summary. It never overwrites existing outputs on a fatal failure
// (output.WriteCSV/WriteJSON only replace a file once the full write has
// succeeded, via temp-file-then-rename). Cancellation is cooperative: ctx
// is checked between activities and before each post-processing stage, and
// a cancelled run leaves the existing output files untouched.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	result := &Result{}
	cfg := p.Config

	activitiesPath := cfg.ActivitiesFile
	existingRawPath := cfg.ProcessedDataDir + "/activities_raw.csv"
	existingMovingPath := cfg.ProcessedDataDir + "/activities_moving.csv"
	summaryPath := cfg.ProcessedDataDir + "/activity_summary.json"
	zonesSummaryPath := cfg.ProcessedDataDir + "/training_zones_summary.csv"

	existingRaw, err := output.ReadCSV(existingRawPath)
	if err != nil {
		return result, fmt.Errorf("pipeline: loading existing raw table: %w", err)
	}
	existingMoving, err := output.ReadCSV(existingMovingPath)
	if err != nil {
		return result, fmt.Errorf("pipeline: loading existing moving table: %w", err)
	}

	activities, err := ingest.Activities(activitiesPath)
	if err != nil {
		return result, fmt.Errorf("pipeline: loading activities catalog: %w", err)
	}

	thresholds, err := ingest.Thresholds(cfg.DataDir + "/historical_thresholds.csv")
	if err != nil {
		return result, fmt.Errorf("pipeline: loading historical thresholds: %w", err)
	}

	existingIDs := repository.ExistingIDs(existingIDColumn(existingRaw))
	pending := repository.PendingActivities(activities, existingIDs)
	for _, a := range activities {
		if !a.IsSupported() {
			result.ActivitiesSkipped++
		}
	}

	var enriched []enrichedActivity
	for _, activity := range pending {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		streamPath := ingest.StreamPath(cfg.StreamsDir, activity.ID)
		raw, err := ingest.Stream(streamPath)
		if err != nil {
			p.Logger.Warnw("skipping activity: stream could not be loaded", "activity_id", activity.ID, "error", err)
			result.ActivitiesSkipped++
			result.Errors = append(result.Errors, err)
			continue
		}

		ftp, fthr := resolveThresholds(thresholds, activity.StartDateLocal, cfg)
		activityCfg := *cfg
		activityCfg.FTP = ftp
		activityCfg.FTHR = fthr

		res, err := analyzer.Analyze(activity, raw, &activityCfg)
		if err != nil {
			if errors.Is(err, analyzer.ErrUnsupportedActivityType) {
				result.ActivitiesSkipped++
				continue
			}
			p.Logger.Warnw("skipping activity: analysis failed", "activity_id", activity.ID, "error", err)
			result.ActivitiesSkipped++
			result.Errors = append(result.Errors, err)
			continue
		}

		enriched = append(enriched, enrichedActivity{
			Activity: activity,
			Raw:      res.RawMetrics,
			Moving:   res.MovingMetrics,
			FTP:      ftp,
			FTHR:     fthr,
		})
		result.ActivitiesFetched++
	}

	if result.ActivitiesFetched == 0 && len(existingRaw.Rows) == 0 {
		return result, ErrNoActivitiesProcessed
	}

	sort.Slice(enriched, func(i, j int) bool {
		return enriched[i].Activity.StartDateLocal.After(enriched[j].Activity.StartDateLocal)
	})

	rawTable := mergeTable(existingRaw, enriched, cfg, func(e enrichedActivity) model.MetricMap { return e.Raw })
	movingTable := mergeTable(existingMoving, enriched, cfg, func(e enrichedActivity) model.MetricMap { return e.Moving })

	if err := ctx.Err(); err != nil {
		return result, err
	}

	// Fitness state, CP/W'/AEI and zone edges all need the full merged
	// history (existing activities union this run's new ones), not just
	// this run's batch, so they run here on rawTable/movingTable rather
	// than on enriched before the merge.
	rawTable, movingTable = applyFitnessAndCP(rawTable, movingTable, cfg)

	if err := ctx.Err(); err != nil {
		return result, err
	}

	now := time.Now()
	rawTable = applyZoneEdges(rawTable, cfg, now)
	movingTable = applyZoneEdges(movingTable, cfg, now)

	if err := ctx.Err(); err != nil {
		return result, err
	}

	if err := output.WriteCSV(existingRawPath, rawTable); err != nil {
		return result, fmt.Errorf("pipeline: writing raw table: %w", err)
	}
	if err := output.WriteCSV(existingMovingPath, movingTable); err != nil {
		return result, fmt.Errorf("pipeline: writing moving table: %w", err)
	}

	snapshot := buildSummary(rawTable, cfg)
	result.TrainingLoad = snapshot.TrainingLoad
	if err := output.WriteJSON(summaryPath, snapshot); err != nil {
		return result, fmt.Errorf("pipeline: writing summary: %w", err)
	}

	if err := output.WriteCSV(zonesSummaryPath, zonesSummaryTable(snapshot)); err != nil {
		return result, fmt.Errorf("pipeline: writing zones summary: %w", err)
	}

	return result, nil
}

// zonesSummaryTable flattens the longitudinal summary's zone distributions
// into the {zone_type, zone_name, percentage} shape.
func zonesSummaryTable(snapshot model.LongitudinalSummary) output.Table {
	rows := summary.FlattenZoneDistributions(snapshot.ZoneDistributions)
	table := output.Table{Columns: []string{"zone_type", "zone_name", "percentage"}}
	for _, r := range rows {
		table.Rows = append(table.Rows, []string{
			r.ZoneType, r.ZoneName, strconv.FormatFloat(r.Percentage, 'f', -1, 64),
		})
	}
	return table
}

func resolveThresholds(rows []ingest.ThresholdRow, activityDate time.Time, cfg *config.Config) (ftp, fthr float64) {
	if f, h, ok := threshold.Resolve(rows, activityDate, cfg.FTPRollingWindowDays); ok {
		return f, h
	}
	return cfg.FTP, cfg.FTHR
}

func existingIDColumn(t output.Table) []int64 {
	idx := columnIndex(t.Columns, "id")
	if idx < 0 {
		return nil
	}
	ids := make([]int64, 0, len(t.Rows))
	for _, row := range t.Rows {
		if idx >= len(row) {
			continue
		}
		id, err := strconv.ParseInt(row[idx], 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func columnIndex(columns []string, name string) int {
	for i, c := range columns {
		if c == name {
			return i
		}
	}
	return -1
}

// mergeTable unions the existing table's columns with the metric keys
// produced this run: the base columns first, then the existing table's
// columns in their stored order, then any new metric keys sorted by name.
// The merged rows are ordered by sortTableDescending.
func mergeTable(existing output.Table, enriched []enrichedActivity, cfg *config.Config, metricsOf func(enrichedActivity) model.MetricMap) output.Table {
	baseColumns := []string{
		"id", "type", "start_date_local", "distance", "moving_time", "elevation_gain",
		"ftp", "fthr", "lt1_power", "lt2_power", "lt1_hr", "lt2_hr",
	}
	columnSet := make(map[string]bool, len(baseColumns))
	for _, c := range baseColumns {
		columnSet[c] = true
	}
	priority := append([]string(nil), baseColumns...)
	for _, c := range existing.Columns {
		if !columnSet[c] {
			priority = append(priority, c)
		}
		columnSet[c] = true
	}
	for _, e := range enriched {
		for k := range metricsOf(e) {
			columnSet[k] = true
		}
	}

	columns := sortedKeys(columnSet, priority)

	var rows [][]string
	for _, e := range enriched {
		rows = append(rows, buildRow(columns, e, cfg, metricsOf(e)))
	}

	existingColIndex := make(map[string]int, len(existing.Columns))
	for i, c := range existing.Columns {
		existingColIndex[c] = i
	}
	for _, oldRow := range existing.Rows {
		row := make([]string, len(columns))
		for i, c := range columns {
			if idx, ok := existingColIndex[c]; ok && idx < len(oldRow) {
				row[i] = oldRow[idx]
			}
		}
		rows = append(rows, row)
	}

	merged := output.Table{Columns: columns, Rows: rows}
	sortTableDescending(&merged)
	return merged
}

// sortTableDescending orders a merged table by start_date_local descending,
// breaking same-day ties by ascending activity id so reruns over the same
// inputs produce byte-identical output.
func sortTableDescending(t *output.Table) {
	dateIdx := columnIndex(t.Columns, "start_date_local")
	idIdx := columnIndex(t.Columns, "id")
	if dateIdx < 0 || idIdx < 0 {
		return
	}
	sort.SliceStable(t.Rows, func(i, j int) bool {
		di, erri := time.Parse(time.RFC3339, get(t.Rows[i], dateIdx))
		dj, errj := time.Parse(time.RFC3339, get(t.Rows[j], dateIdx))
		if erri != nil || errj != nil {
			return erri == nil && errj != nil
		}
		if !di.Equal(dj) {
			return di.After(dj)
		}
		idi, _ := strconv.ParseInt(get(t.Rows[i], idIdx), 10, 64)
		idj, _ := strconv.ParseInt(get(t.Rows[j], idIdx), 10, 64)
		return idi < idj
	})
}

// buildRow materializes one activity's row, including the reference
// threshold columns (the per-activity resolved FTP/FTHR and the
// configured LT thresholds) carried alongside the metric columns.
func buildRow(columns []string, e enrichedActivity, cfg *config.Config, metrics model.MetricMap) []string {
	row := make([]string, len(columns))
	for i, c := range columns {
		switch c {
		case "id":
			row[i] = strconv.FormatInt(e.Activity.ID, 10)
		case "type":
			row[i] = string(e.Activity.Type)
		case "start_date_local":
			row[i] = e.Activity.StartDateLocal.Format(time.RFC3339)
		case "distance":
			row[i] = strconv.FormatFloat(e.Activity.Distance, 'f', -1, 64)
		case "moving_time":
			row[i] = strconv.Itoa(e.Activity.MovingTime)
		case "elevation_gain":
			row[i] = strconv.FormatFloat(e.Activity.ElevationGain, 'f', -1, 64)
		case "ftp":
			row[i] = formatOptionalFloat(e.FTP)
		case "fthr":
			row[i] = formatOptionalFloat(e.FTHR)
		case "lt1_power":
			row[i] = formatOptionalFloat(cfg.LT1Power)
		case "lt2_power":
			row[i] = formatOptionalFloat(cfg.LT2Power)
		case "lt1_hr":
			row[i] = formatOptionalFloat(cfg.LT1HR)
		case "lt2_hr":
			row[i] = formatOptionalFloat(cfg.LT2HR)
		default:
			if v, ok := metrics.Float(c); ok {
				row[i] = strconv.FormatFloat(v, 'f', -1, 64)
			} else if v, ok := metrics[c].(string); ok {
				row[i] = v
			}
		}
	}
	return row
}

func sortedKeys(set map[string]bool, priority []string) []string {
	seen := make(map[string]bool, len(priority))
	out := make([]string, 0, len(set))
	for _, k := range priority {
		out = append(out, k)
		seen[k] = true
	}
	var rest []string
	for k := range set {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// buildSummary reconstructs a summary.Enriched entry for every row in the
// merged raw table (existing activities from prior runs plus this run's
// new ones), so the longitudinal summary always reflects the full history
// rather than just this run's delta.
func buildSummary(rawTable output.Table, cfg *config.Config) model.LongitudinalSummary {
	idIdx := columnIndex(rawTable.Columns, "id")
	typeIdx := columnIndex(rawTable.Columns, "type")
	dateIdx := columnIndex(rawTable.Columns, "start_date_local")
	distIdx := columnIndex(rawTable.Columns, "distance")
	movingIdx := columnIndex(rawTable.Columns, "moving_time")
	elevIdx := columnIndex(rawTable.Columns, "elevation_gain")

	entries := make([]summary.Enriched, 0, len(rawTable.Rows))
	for _, row := range rawTable.Rows {
		id, _ := strconv.ParseInt(get(row, idIdx), 10, 64)
		date, _ := time.Parse(time.RFC3339, get(row, dateIdx))
		distance, _ := strconv.ParseFloat(get(row, distIdx), 64)
		movingTime, _ := strconv.Atoi(get(row, movingIdx))
		elevation, _ := strconv.ParseFloat(get(row, elevIdx), 64)

		activity := model.Activity{
			ID:             id,
			Type:           model.ActivityType(get(row, typeIdx)),
			StartDateLocal: date,
			Distance:       distance,
			MovingTime:     movingTime,
			ElevationGain:  elevation,
		}

		metrics := make(model.MetricMap, len(rawTable.Columns))
		for i, col := range rawTable.Columns {
			switch col {
			case "id", "type", "start_date_local", "distance", "moving_time", "elevation_gain":
				continue
			}
			s := get(row, i)
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				metrics[col] = f
			} else {
				metrics[col] = s
			}
		}

		entries = append(entries, summary.Enriched{Activity: activity, Metrics: metrics})
	}

	return summary.Summarize(entries, summary.Filter{}, float64(cfg.CTLDays), float64(cfg.ATLDays))
}
