package powercurve

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"cycleload/internal/model"
)

const (
	minDurationS  = 120
	minPoints     = 3
	maxIterations = 5000

	cpLowerBound = 100
	cpUpperBound = 400
	wPrimeLower  = 5000
	wPrimeUpper  = 50000

	defaultWPrimeGuess = 15000
)

// Fit solves the hyperbolic model P(t) = CP + W'/t for the given points
// using a bounded Levenberg-Marquardt loop: gonum's optimize package has
// no native box-constrained nonlinear least squares solver, so bounds are
// enforced by projecting the parameter vector back into range after every
// damped step. ftpHint, if > 0, seeds the initial guess; otherwise the
// guess is derived from the longest-duration point. Returns NaN CP/W'/r²
// on failure (too few points, or non-convergence) rather than an error, so
// callers can persist a sentinel and continue.
func Fit(points []Point, ftpHint float64) model.CPModel {
	filtered := make([]Point, 0, len(points))
	for _, p := range points {
		if p.DurationS >= minDurationS {
			filtered = append(filtered, p)
		}
	}
	if len(filtered) < minPoints {
		return model.CPModel{CP: math.NaN(), WPrime: math.NaN(), RSquared: math.NaN()}
	}

	cp, wPrime := initialGuess(filtered, ftpHint)

	lambda := 1e-3
	const eps = 1e-9
	converged := false

	for iter := 0; iter < maxIterations; iter++ {
		residuals, jacobian := residualsAndJacobian(filtered, cp, wPrime)

		jt := mat.NewDense(2, len(filtered), nil)
		jt.CloneFrom(jacobian.T())

		jtj := mat.NewDense(2, 2, nil)
		jtj.Mul(jt, jacobian)

		jtr := mat.NewDense(2, 1, nil)
		jtr.Mul(jt, residuals)

		damped := mat.NewDense(2, 2, nil)
		damped.Copy(jtj)
		damped.Set(0, 0, damped.At(0, 0)*(1+lambda))
		damped.Set(1, 1, damped.At(1, 1)*(1+lambda))

		var delta mat.Dense
		if err := delta.Solve(damped, jtr); err != nil {
			lambda *= 10
			if lambda > 1e8 {
				break
			}
			continue
		}

		newCP := clamp(cp+delta.At(0, 0), cpLowerBound, cpUpperBound)
		newWPrime := clamp(wPrime+delta.At(1, 0), wPrimeLower, wPrimeUpper)

		if sse(filtered, newCP, newWPrime) < sse(filtered, cp, wPrime) {
			improved := math.Abs(newCP-cp) < eps && math.Abs(newWPrime-wPrime) < eps
			cp, wPrime = newCP, newWPrime
			lambda = math.Max(lambda/10, 1e-12)
			if improved {
				converged = true
				break
			}
		} else {
			lambda *= 10
			if lambda > 1e8 {
				converged = true
				break
			}
		}
	}
	if !converged {
		return model.CPModel{CP: math.NaN(), WPrime: math.NaN(), RSquared: math.NaN()}
	}

	r2 := rSquared(filtered, cp, wPrime)
	return model.CPModel{CP: cp, WPrime: wPrime, RSquared: r2}
}

func initialGuess(points []Point, ftpHint float64) (cp, wPrime float64) {
	if ftpHint > 0 {
		return clamp(0.88*ftpHint, cpLowerBound, cpUpperBound), defaultWPrimeGuess
	}
	longest := points[0]
	for _, p := range points {
		if p.DurationS > longest.DurationS {
			longest = p
		}
	}
	return clamp(0.95*longest.PowerW, cpLowerBound, cpUpperBound), defaultWPrimeGuess
}

func predict(t float64, cp, wPrime float64) float64 {
	return cp + wPrime/t
}

func residualsAndJacobian(points []Point, cp, wPrime float64) (*mat.Dense, *mat.Dense) {
	n := len(points)
	r := mat.NewDense(n, 1, nil)
	j := mat.NewDense(n, 2, nil)
	for i, p := range points {
		t := float64(p.DurationS)
		pred := predict(t, cp, wPrime)
		r.Set(i, 0, p.PowerW-pred)
		j.Set(i, 0, 1)
		j.Set(i, 1, 1/t)
	}
	return r, j
}

func sse(points []Point, cp, wPrime float64) float64 {
	var total float64
	for _, p := range points {
		d := p.PowerW - predict(float64(p.DurationS), cp, wPrime)
		total += d * d
	}
	return total
}

func rSquared(points []Point, cp, wPrime float64) float64 {
	var mean float64
	for _, p := range points {
		mean += p.PowerW
	}
	mean /= float64(len(points))

	var ssRes, ssTot float64
	for _, p := range points {
		pred := predict(float64(p.DurationS), cp, wPrime)
		ssRes += (p.PowerW - pred) * (p.PowerW - pred)
		ssTot += (p.PowerW - mean) * (p.PowerW - mean)
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
