package metrics

import (
	"math"

	"cycleload/internal/model"
	"cycleload/internal/streamproc"
)

// minCardiacDriftSamples is the sample count below which cardiac_drift is
// left unset.
const minCardiacDriftSamples = 600

const (
	sweetSpotLowPct  = 0.88
	sweetSpotHighPct = 0.94
	matchBurnFloor   = 0.50
	matchBurnHyst    = 0.10
)

// AdvancedPower computes time_above_90_ftp, time_sweet_spot,
// w_prime_balance_min, match_burn_count, negative_split_index,
// cardiac_drift and estimated_ftp for a cycling activity's view.
func AdvancedPower(view *model.Stream, ftp, cp, wPrime float64) model.MetricMap {
	out := model.MetricMap{}
	if !view.HasWatts {
		return out
	}
	dt := streamproc.TimeDeltas(view.Time)

	if ftp > 0 {
		out["time_above_90_ftp"] = streamproc.DurationWhere(dt, func(i int) bool {
			return view.Watts[i] > 0.90*ftp
		})
		out["time_sweet_spot"] = streamproc.DurationWhere(dt, func(i int) bool {
			return view.Watts[i] >= sweetSpotLowPct*ftp && view.Watts[i] <= sweetSpotHighPct*ftp
		})
	}

	if cp > 0 && wPrime > 0 {
		wBalMin, matchCount := wPrimeBalance(view.Watts, cp, wPrime)
		out["w_prime_balance_min"] = wBalMin
		out["match_burn_count"] = float64(matchCount)
	}

	if nsi, ok := negativeSplitIndex(view); ok {
		out["negative_split_index"] = nsi
	}

	if view.N >= minCardiacDriftSamples && view.HasHeartrate {
		if drift, ok := cardiacDrift(view); ok {
			out["cardiac_drift"] = drift
		}
	}

	if estFTP, ok := estimatedFTP(view); ok {
		out["estimated_ftp"] = estFTP
	}

	return out
}

// wPrimeBalance runs the W' balance recurrence and returns the minimum
// balance reached (as a fraction of W') and the number of match-burn
// events (contiguous intervals below 50% of W', with 10% hysteresis on
// re-entry).
func wPrimeBalance(watts []float64, cp, wPrime float64) (minFraction float64, matchCount int) {
	if len(watts) == 0 {
		return 0, 0
	}
	wBal := wPrime
	minBal := wPrime

	inMatch := false
	for _, p := range watts {
		if p > cp {
			wBal -= p - cp
		} else {
			tau := 546*math.Exp(-0.01*(cp-p)) + 316
			wBal += (wPrime - wBal) * (1 - math.Exp(-1/tau))
		}
		if wBal < 0 {
			wBal = 0
		}
		if wBal > wPrime {
			wBal = wPrime
		}
		if wBal < minBal {
			minBal = wBal
		}

		frac := wBal / wPrime
		switch {
		case !inMatch && frac < matchBurnFloor:
			inMatch = true
			matchCount++
		case inMatch && frac > matchBurnFloor+matchBurnHyst:
			inMatch = false
		}
	}

	return minBal / wPrime, matchCount
}

// negativeSplitIndex compares the simplified NP of the second half of the
// view to the first (30-sample centred rolling mean, then an L4-mean).
func negativeSplitIndex(view *model.Stream) (float64, bool) {
	if !view.HasWatts || view.N < 60 {
		return 0, false
	}
	firstN, _ := halves(view.N)
	firstNP, ok1 := simplifiedNP(view.Watts[:firstN])
	secondNP, ok2 := simplifiedNP(view.Watts[firstN:])
	if !ok1 || !ok2 || firstNP <= 0 {
		return 0, false
	}
	return secondNP / firstNP, true
}

// simplifiedNP computes a 30-sample centred rolling mean of watts, then the
// L4-mean (fourth-power mean) of that rolling series.
func simplifiedNP(watts []float64) (float64, bool) {
	const w = 30
	if len(watts) < w {
		return 0, false
	}
	rolling := streamproc.RollingMeanBySamples(watts, w)
	if len(rolling) == 0 {
		return 0, false
	}
	var sumFourth float64
	for _, m := range rolling {
		sumFourth += m * m * m * m
	}
	meanFourth := sumFourth / float64(len(rolling))
	if meanFourth <= 0 {
		return 0, false
	}
	return math.Pow(meanFourth, 0.25), true
}

// cardiacDrift is the half-split EF drift, sharing the same formula as
// power_hr_decoupling but gated on a much larger minimum sample count.
func cardiacDrift(view *model.Stream) (float64, bool) {
	n := view.N
	firstN, secondN := halves(n)
	if firstN == 0 || secondN == 0 {
		return 0, false
	}
	firstEF := efSlice(view, 0, firstN)
	secondEF := efSlice(view, firstN, n)
	if firstEF <= 0 {
		return 0, false
	}
	return (secondEF - firstEF) / firstEF * 100, true
}

// estimatedFTP is 0.95 times the best 20-minute rolling mean power.
func estimatedFTP(view *model.Stream) (float64, bool) {
	if !view.HasWatts {
		return 0, false
	}
	best, ok := streamproc.RollingMaxMean(view.Watts, 1200)
	if !ok {
		return 0, false
	}
	return 0.95 * best, true
}
