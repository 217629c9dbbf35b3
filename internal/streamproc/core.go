package streamproc

// TimeDeltas computes Δt[i] = time[i] - time[i-1], with Δt[0] := Δt[1] (or
// 1.0 for a single sample), clipped to a floor of 1.0. It never clips
// upward: a raw view's irregular gaps are preserved so the splitter's moving
// view is the only place windowed operators see uniform spacing.
func TimeDeltas(time []float64) []float64 {
	n := len(time)
	if n == 0 {
		return nil
	}
	dt := make([]float64, n)
	if n == 1 {
		dt[0] = 1.0
		return dt
	}
	for i := 1; i < n; i++ {
		d := time[i] - time[i-1]
		if d < 1.0 {
			d = 1.0
		}
		dt[i] = d
	}
	dt[0] = dt[1]
	return dt
}

// TimeWeightedMean returns Σ(values·Δt) / Σ(Δt) over the shared index range
// of values and dt, skipping NaN entries in values. Returns 0 for empty
// input, matching the canonical non-peak aggregate used throughout the
// calculators.
func TimeWeightedMean(values, dt []float64) float64 {
	n := len(values)
	if len(dt) < n {
		n = len(dt)
	}
	var num, den float64
	for i := 0; i < n; i++ {
		v := values[i]
		if isNaN(v) {
			continue
		}
		num += v * dt[i]
		den += dt[i]
	}
	if den == 0 {
		return 0
	}
	return num / den
}

func isNaN(f float64) bool {
	return f != f
}

// RollingMeanBySamples computes, for each index i >= w-1, the mean of
// values[i-w+1 : i+1]. Used on the raw view, where it is technically a
// rolling mean over w samples rather than w seconds (acceptable: the raw
// view is only used for peak-finding and coarse rollups).
func RollingMeanBySamples(values []float64, w int) []float64 {
	n := len(values)
	if w <= 0 || n < w {
		return nil
	}
	out := make([]float64, n-w+1)
	var sum float64
	for i := 0; i < w; i++ {
		sum += values[i]
	}
	out[0] = sum / float64(w)
	for i := w; i < n; i++ {
		sum += values[i] - values[i-w]
		out[i-w+1] = sum / float64(w)
	}
	return out
}

// RollingMeanBySeconds computes a rolling mean over w seconds on a moving
// view, where Δt ≡ 1.0 by construction, so this is equivalent to
// RollingMeanBySamples(values, w).
func RollingMeanBySeconds(values []float64, w int) []float64 {
	return RollingMeanBySamples(values, w)
}

// DurationWhere sums Δt over indices where pred(i) holds, using the
// stream's time-delta series. Used for time_above_90_ftp, time_sweet_spot,
// time in zone, TID band times and similar accumulation metrics.
func DurationWhere(dt []float64, pred func(i int) bool) float64 {
	var total float64
	for i, d := range dt {
		if pred(i) {
			total += d
		}
	}
	return total
}

// RollingMaxMean returns the maximum over all windows of length w of the
// mean of values in that window; ok is false if there are fewer than w
// samples. This is the core MMP primitive shared by PowerCurve and the
// best-20-minute estimated_ftp calculation.
func RollingMaxMean(values []float64, w int) (best float64, ok bool) {
	means := RollingMeanBySamples(values, w)
	if len(means) == 0 {
		return 0, false
	}
	best = means[0]
	for _, m := range means[1:] {
		if m > best {
			best = m
		}
	}
	return best, true
}
