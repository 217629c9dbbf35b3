// Package analyzer orchestrates, for one activity, the stream split and
// the calculator sweep over each resulting view.
package analyzer

import (
	"errors"
	"fmt"

	"cycleload/internal/config"
	"cycleload/internal/metrics"
	"cycleload/internal/model"
	"cycleload/internal/powercurve"
	"cycleload/internal/streamproc"
)

// ErrUnsupportedActivityType is returned for activity types the kernel does
// not analyze (anything outside Ride/VirtualRide/Run). It is not a fatal
// pipeline error: the caller skips the activity and continues.
var ErrUnsupportedActivityType = errors.New("analyzer: unsupported activity type")

// Analyze runs the full per-activity pipeline stage: validate type, clean
// and split the stream, then run every calculator on the raw view (which
// needs the original timeline for MMP) and the moving view.
func Analyze(activity model.Activity, raw *model.RawStream, cfg *config.Config) (model.AnalysisResult, error) {
	if !activity.IsSupported() {
		return model.AnalysisResult{}, fmt.Errorf("%w: %s", ErrUnsupportedActivityType, activity.Type)
	}

	cleaned, err := streamproc.Process(raw)
	if err != nil {
		return model.AnalysisResult{}, fmt.Errorf("analyzer: processing stream for activity %d: %w", activity.ID, err)
	}

	split := streamproc.Split(cleaned)

	result := model.AnalysisResult{
		ActivityID:    activity.ID,
		ActivityType:  activity.Type,
		RawMetrics:    calculate(split.Raw, activity, cfg),
		MovingMetrics: calculate(split.Moving, activity, cfg),
	}
	if len(result.RawMetrics) > 0 {
		result.RawMetrics["duration_s"] = split.RawDurationS
	}
	if len(result.MovingMetrics) > 0 {
		result.MovingMetrics["duration_s"] = split.MovingDurationS
	}
	return result, nil
}

// calculate runs every applicable calculator on one view and merges their
// outputs into a single flat metric map.
func calculate(view *model.Stream, activity model.Activity, cfg *config.Config) model.MetricMap {
	out := model.MetricMap{}
	if view == nil || view.N == 0 {
		return out
	}

	merge(out, metrics.Basic(view))
	merge(out, metrics.Power(view, cfg.FTP, cfg.RiderWeightKG))
	merge(out, metrics.HeartRate(view, cfg.FTHR))
	merge(out, metrics.Efficiency(view))
	merge(out, metrics.Zones(view,
		metrics.ComputePowerZoneEdges(cfg.FTP, cfg.LT1Power, cfg.LT2Power),
		metrics.ComputeHREdges(cfg.FTHR, cfg.LT1HR, cfg.LT2HR)))
	merge(out, metrics.TID(view, cfg.FTP, cfg.FTHR))
	merge(out, metrics.Fatigue(view, 300))
	merge(out, powercurve.MMP(view, cfg.PowerCurveIntervals))

	switch activity.Type {
	case model.Run:
		merge(out, metrics.Pace(view, cfg.GradeAdjustment.Uphill))
	case model.Ride, model.VirtualRide:
		merge(out, metrics.Climbing(view, cfg.RiderWeightKG))
		merge(out, metrics.AdvancedPower(view, cfg.FTP, cfg.CP, cfg.WPrime))
	}

	return out
}

func merge(dst, src model.MetricMap) {
	for k, v := range src {
		dst[k] = v
	}
}
