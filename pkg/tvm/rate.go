package tvm

import (
	"fmt"
	"math"

	"github.com/iwvelando/simple-finance/pkg/constants"
	"github.com/iwvelando/simple-finance/pkg/mathutil"
)

// Rate solver methods reported in RateResult.Method.
const (
	MethodNewton    = "newton"
	MethodBisection = "bisection"
)

// zeroRate is the magnitude below which the annuity factor is evaluated by
// its series expansion to avoid 0/0 and cancellation.
const zeroRate = 1e-6

// derivativeFloor stops Newton-Raphson when the slope flattens out.
const derivativeFloor = 1e-15

// residualTolerance is the relative residual accepted as a root.
const residualTolerance = 1e-7

// bracketGrid holds the fractional rates scanned for a sign change when
// Newton-Raphson fails.
var bracketGrid = []float64{
	constants.MinimumRate, -0.9, -0.75, -0.5, -0.25, -0.1, -0.05, -0.01,
	0, 0.01, 0.025, 0.05, 0.1, 0.2, 0.35, 0.5, 0.75, 1, 2, 5, constants.MaximumRate,
}

// RateOptions tunes the interest rate solver.
type RateOptions struct {
	Tolerance     float64 // convergence tolerance on the fractional rate
	MaxIterations int
	InitialGuess  float64 // percent
}

// DefaultRateOptions returns the solver defaults.
func DefaultRateOptions() RateOptions {
	return RateOptions{
		Tolerance:     constants.DefaultRateTolerance,
		MaxIterations: constants.DefaultRateMaxIterations,
		InitialGuess:  constants.DefaultRateInitialGuess,
	}
}

// normalized replaces unusable option values with defaults.
func (o RateOptions) normalized() RateOptions {
	defaults := DefaultRateOptions()
	if !(o.Tolerance > 0) || math.IsInf(o.Tolerance, 0) {
		o.Tolerance = defaults.Tolerance
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = defaults.MaxIterations
	}
	if !mathutil.IsFinite(o.InitialGuess) {
		o.InitialGuess = defaults.InitialGuess
	}
	return o
}

// RateResult is the outcome of an interest rate solve.
type RateResult struct {
	Rate       float64 // percent
	Iterations int
	Method     string
}

// rateEquation is f(r) = pv·(1+r)^n + pmt·A(r) − fv where
// A(r) = ((1+r)^n − 1)/r and A(0) = n.
type rateEquation struct {
	pv, fv, pmt, n float64
}

// eval returns f(r) and f'(r).
func (e rateEquation) eval(r float64) (float64, float64) {
	growth := math.Pow(1+r, e.n)
	dGrowth := e.n * math.Pow(1+r, e.n-1)

	var annuity, dAnnuity float64
	if math.Abs(r) < zeroRate {
		c1 := e.n * (e.n - 1) / 2
		c2 := c1 * (e.n - 2) / 3
		annuity = e.n + c1*r + c2*r*r
		dAnnuity = c1 + 2*c2*r
	} else {
		annuity = (growth - 1) / r
		dAnnuity = (dGrowth*r - (growth - 1)) / (r * r)
	}

	return e.pv*growth + e.pmt*annuity - e.fv, e.pv*dGrowth + e.pmt*dAnnuity
}

func (e rateEquation) value(r float64) float64 {
	f, _ := e.eval(r)
	return f
}

// scale is the magnitude the residual is measured against.
func (e rateEquation) scale() float64 {
	return math.Max(1, math.Max(math.Abs(e.fv), math.Max(math.Abs(e.pv), math.Abs(e.pmt*e.n))))
}

func (e rateEquation) isRoot(r float64) bool {
	f := e.value(r)
	return mathutil.IsFinite(f) && math.Abs(f) <= residualTolerance*e.scale()
}

// SolveRate finds the per-period rate, in percent, satisfying
// pv·(1+r)^n + pmt·((1+r)^n − 1)/r = fv. Newton-Raphson with an analytic
// derivative runs first; if it stalls or leaves the search range the solver
// scans for a sign change and bisects.
func SolveRate(pv, fv, pmt, n float64, opts RateOptions) (RateResult, error) {
	for _, v := range []float64{pv, fv, pmt, n} {
		if !mathutil.IsFinite(v) {
			return RateResult{}, fmt.Errorf("solve rate: %w: non-finite value %v", ErrInvalidInput, v)
		}
	}
	if n == 0 {
		return RateResult{}, fmt.Errorf("solve rate: %w: number of periods is zero", ErrUndefined)
	}

	opts = opts.normalized()
	eq := rateEquation{pv: pv, fv: fv, pmt: pmt, n: n}

	if rate, iterations, ok := newtonRate(eq, opts); ok {
		return RateResult{Rate: mathutil.ToPercent(rate), Iterations: iterations, Method: MethodNewton}, nil
	}

	rate, iterations, err := bisectRate(eq, opts)
	if err != nil {
		return RateResult{}, err
	}
	return RateResult{Rate: mathutil.ToPercent(rate), Iterations: iterations, Method: MethodBisection}, nil
}

func newtonRate(eq rateEquation, opts RateOptions) (float64, int, bool) {
	r := clampRate(mathutil.ToFraction(opts.InitialGuess))

	for iter := 0; iter < opts.MaxIterations; iter++ {
		f, df := eq.eval(r)
		if !mathutil.IsFinite(f) || !mathutil.IsFinite(df) {
			return r, iter + 1, false
		}
		if f == 0 {
			return r, iter + 1, true
		}
		if math.Abs(df) < derivativeFloor {
			return r, iter + 1, false
		}

		next := clampRate(r - f/df)
		if mathutil.WithinTolerance(next, r, opts.Tolerance) {
			return next, iter + 1, eq.isRoot(next)
		}
		r = next
	}

	return r, opts.MaxIterations, false
}

func bisectRate(eq rateEquation, opts RateOptions) (float64, int, error) {
	lower, upper, found := bracketRate(eq)
	if !found {
		return 0, 0, fmt.Errorf("solve rate: %w between %.0f%% and %.0f%%", ErrNoSolution,
			mathutil.ToPercent(constants.MinimumRate), mathutil.ToPercent(constants.MaximumRate))
	}

	fLower := eq.value(lower)
	if fLower == 0 {
		return lower, 0, nil
	}
	if eq.value(upper) == 0 {
		return upper, 0, nil
	}

	iterations := 0
	for iterations < opts.MaxIterations && upper-lower > opts.Tolerance {
		mid := lower + (upper-lower)/2
		fMid := eq.value(mid)
		iterations++
		if fMid == 0 {
			return mid, iterations, nil
		}
		if (fMid < 0) == (fLower < 0) {
			lower, fLower = mid, fMid
		} else {
			upper = mid
		}
	}

	root := lower + (upper-lower)/2
	if !eq.isRoot(root) {
		return 0, iterations, fmt.Errorf("solve rate: %w: bisection did not converge after %d iterations",
			ErrNoSolution, iterations)
	}
	return root, iterations, nil
}

// bracketRate returns the first interval whose endpoint residuals differ in
// sign. A grid cell without a sign change is split at its interior extremum,
// which exposes a pair of roots lying inside one cell.
func bracketRate(eq rateEquation) (float64, float64, bool) {
	prev := bracketGrid[0]
	fPrev, dPrev := eq.eval(prev)
	for _, r := range bracketGrid[1:] {
		f, d := eq.eval(r)
		if fPrev == 0 {
			return prev, r, true
		}
		if mathutil.IsFinite(fPrev) && mathutil.IsFinite(f) && (fPrev < 0) != (f < 0) {
			return prev, r, true
		}
		if mathutil.IsFinite(fPrev) && mathutil.IsFinite(dPrev) && mathutil.IsFinite(d) &&
			dPrev != 0 && (dPrev < 0) != (d < 0) {
			peak := extremumRate(eq, prev, r, dPrev)
			if fPeak := eq.value(peak); mathutil.IsFinite(fPeak) && (fPeak == 0 || (fPeak < 0) != (fPrev < 0)) {
				return prev, peak, true
			}
		}
		prev, fPrev, dPrev = r, f, d
	}
	return 0, 0, false
}

// extremumIterations halves a grid cell well below float64 resolution.
const extremumIterations = 80

// extremumRate bisects on the sign of f' to locate the turning point of f
// between lower and upper, where dLower is f'(lower).
func extremumRate(eq rateEquation, lower, upper, dLower float64) float64 {
	for i := 0; i < extremumIterations; i++ {
		mid := lower + (upper-lower)/2
		if mid <= lower || mid >= upper {
			break
		}
		_, dMid := eq.eval(mid)
		if !mathutil.IsFinite(dMid) {
			break
		}
		if dMid == 0 {
			return mid
		}
		if (dMid < 0) == (dLower < 0) {
			lower = mid
		} else {
			upper = mid
		}
	}
	return lower + (upper-lower)/2
}

func clampRate(r float64) float64 {
	if r < constants.MinimumRate {
		return constants.MinimumRate
	}
	if r > constants.MaximumRate {
		return constants.MaximumRate
	}
	return r
}
