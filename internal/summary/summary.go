// Package summary aggregates a set of enriched activities into one
// longitudinal snapshot: totals, the current training-load state, rolling
// performance trends and zone distributions.
package summary

import (
	"sort"
	"strings"
	"time"

	"cycleload/internal/fitness"
	"cycleload/internal/model"
)

// Enriched pairs an activity's metadata with its raw-view metric map, the
// unit Summarizer operates on.
type Enriched struct {
	Activity model.Activity
	Metrics  model.MetricMap
}

// Filter narrows the activity set before aggregation. A nil pointer means
// "no filter" for that dimension.
type Filter struct {
	From *time.Time
	To   *time.Time
	Type *model.ActivityType
}

const (
	trendWindowDays = 28
	weekDays        = 7
)

// TrendMetrics are the metric keys performance_trends reports percent
// change for.
var TrendMetrics = []string{"normalized_power", "efficiency_factor", "average_hr"}

// Summarize filters, then aggregates, activities into a LongitudinalSummary.
func Summarize(activities []Enriched, filter Filter, ctlDays, atlDays float64) model.LongitudinalSummary {
	filtered := apply(activities, filter)
	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].Activity.StartDateLocal.Before(filtered[j].Activity.StartDateLocal)
	})

	out := model.LongitudinalSummary{
		PerformanceTrends: map[string]float64{},
		ZoneDistributions: map[string]float64{},
	}
	if len(filtered) == 0 {
		return out
	}

	out.PeriodStart = filtered[0].Activity.StartDateLocal
	out.PeriodEnd = filtered[len(filtered)-1].Activity.StartDateLocal
	out.ActivityCount = len(filtered)

	for _, e := range filtered {
		out.TotalDistance += e.Activity.Distance
		out.TotalElevation += e.Activity.ElevationGain
		out.TotalMovingTime += e.Activity.MovingTime
	}

	out.TrainingLoad = trainingLoadAtEnd(filtered, ctlDays, atlDays)

	for _, key := range TrendMetrics {
		if pct, ok := trendPercentChange(filtered, key); ok {
			out.PerformanceTrends[key] = pct
		}
	}

	out.ZoneDistributions = zoneDistributions(filtered)

	out.RollingEF4Week = rollingEFMean(filtered, 4*weekDays)
	out.RollingEF52Week = rollingEFMean(filtered, 52*weekDays)

	return out
}

func apply(activities []Enriched, f Filter) []Enriched {
	out := make([]Enriched, 0, len(activities))
	for _, e := range activities {
		if f.From != nil && e.Activity.StartDateLocal.Before(*f.From) {
			continue
		}
		if f.To != nil && e.Activity.StartDateLocal.After(*f.To) {
			continue
		}
		if f.Type != nil && e.Activity.Type != *f.Type {
			continue
		}
		out = append(out, e)
	}
	return out
}

func trainingLoadAtEnd(filtered []Enriched, ctlDays, atlDays float64) model.FitnessState {
	samples := make([]fitness.Sample, len(filtered))
	for i, e := range filtered {
		tss, _ := e.Metrics.Float("training_stress_score")
		if tss == 0 {
			tss, _ = e.Metrics.Float("hr_training_stress")
		}
		samples[i] = fitness.Sample{
			ActivityID: e.Activity.ID,
			Date:       e.Activity.StartDateLocal,
			TSS:        tss,
		}
	}
	states := fitness.Compute(samples, ctlDays, atlDays)
	if len(states) == 0 {
		return model.FitnessState{}
	}
	return states[len(states)-1]
}

// trendPercentChange compares the mean of key over the first
// trendWindowDays of the filtered set to the mean over the last
// trendWindowDays, as a percent change.
func trendPercentChange(filtered []Enriched, key string) (float64, bool) {
	if len(filtered) == 0 {
		return 0, false
	}
	start := filtered[0].Activity.StartDateLocal
	end := filtered[len(filtered)-1].Activity.StartDateLocal

	startWindowEnd := start.AddDate(0, 0, trendWindowDays)
	endWindowStart := end.AddDate(0, 0, -trendWindowDays)

	startMean, startOK := meanMetric(filtered, key, func(t time.Time) bool { return t.Before(startWindowEnd) })
	endMean, endOK := meanMetric(filtered, key, func(t time.Time) bool { return !t.Before(endWindowStart) })
	if !startOK || !endOK || startMean == 0 {
		return 0, false
	}
	return (endMean - startMean) / startMean * 100, true
}

func meanMetric(filtered []Enriched, key string, in func(time.Time) bool) (float64, bool) {
	var sum float64
	count := 0
	for _, e := range filtered {
		if !in(e.Activity.StartDateLocal) {
			continue
		}
		if v, ok := e.Metrics.Float(key); ok {
			sum += v
			count++
		}
	}
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}

func zoneDistributions(filtered []Enriched) map[string]float64 {
	sums := map[string]float64{}
	counts := map[string]int{}
	for _, e := range filtered {
		for k, v := range e.Metrics {
			if !strings.HasSuffix(k, "_percentage") {
				continue
			}
			f, ok := v.(float64)
			if !ok {
				continue
			}
			sums[k] += f
			counts[k]++
		}
	}
	out := make(map[string]float64, len(sums))
	for k, s := range sums {
		out[k] = s / float64(counts[k])
	}
	return out
}

// ZoneRow is one flattened row of a zone distribution: which zone layout
// it came from ("power" or "hr"), which zone within that layout, and the
// mean time-in-zone percentage.
type ZoneRow struct {
	ZoneType   string
	ZoneName   string
	Percentage float64
}

// FlattenZoneDistributions turns LongitudinalSummary.ZoneDistributions
// (column name -> mean percentage, e.g. "power_z3_percentage" -> 18.4)
// into a sorted slice of ZoneRow, for export as training_zones_summary.csv.
func FlattenZoneDistributions(distributions map[string]float64) []ZoneRow {
	rows := make([]ZoneRow, 0, len(distributions))
	for key, pct := range distributions {
		zoneType, zoneName, ok := splitZoneColumn(key)
		if !ok {
			continue
		}
		rows = append(rows, ZoneRow{ZoneType: zoneType, ZoneName: zoneName, Percentage: pct})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].ZoneType != rows[j].ZoneType {
			return rows[i].ZoneType < rows[j].ZoneType
		}
		return rows[i].ZoneName < rows[j].ZoneName
	})
	return rows
}

// splitZoneColumn splits a "<type>_<name>_percentage" column name, e.g.
// "power_z3_percentage" -> ("power", "z3", true).
func splitZoneColumn(key string) (zoneType, zoneName string, ok bool) {
	const suffix = "_percentage"
	if !strings.HasSuffix(key, suffix) {
		return "", "", false
	}
	body := strings.TrimSuffix(key, suffix)
	idx := strings.Index(body, "_")
	if idx < 0 {
		return "", "", false
	}
	return body[:idx], body[idx+1:], true
}

func rollingEFMean(filtered []Enriched, windowDays int) float64 {
	if len(filtered) == 0 {
		return 0
	}
	end := filtered[len(filtered)-1].Activity.StartDateLocal
	windowStart := end.AddDate(0, 0, -windowDays)
	mean, _ := meanMetric(filtered, "efficiency_factor", func(t time.Time) bool { return !t.Before(windowStart) })
	return mean
}
