package tvm

import (
	"fmt"
	"math"

	"github.com/iwvelando/simple-finance/pkg/mathutil"
	"go.uber.org/zap"
)

// Result is the outcome of a checked calculation.
type Result struct {
	Field      Field   `json:"unknown"`
	Value      float64 `json:"value"`
	Iterations int     `json:"iterations,omitempty"`
	Method     string  `json:"method,omitempty"`
}

// Solver dispatches a calculation on the unknown field and reports
// undefined results as errors. It holds no per-call state and is safe for
// concurrent use.
type Solver struct {
	logger  *zap.Logger
	options RateOptions
}

// NewSolver creates a Solver. A nil logger is replaced with a no-op logger.
func NewSolver(logger *zap.Logger, opts RateOptions) *Solver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Solver{logger: logger, options: opts.normalized()}
}

// Options returns the rate solver options in effect.
func (s *Solver) Options() RateOptions {
	return s.options
}

// Solve computes field from the remaining values in in.
func Solve(field Field, in Inputs) (Result, error) {
	return NewSolver(nil, DefaultRateOptions()).Solve(field, in)
}

// Solve computes field from the remaining values in in. Non-finite inputs
// yield ErrInvalidInput and non-finite results yield ErrUndefined.
func (s *Solver) Solve(field Field, in Inputs) (Result, error) {
	if !field.Valid() {
		return Result{}, fmt.Errorf("solve: %w: %d", ErrUnknownField, int(field))
	}
	for _, required := range Required(field) {
		if v := in.Value(required); !mathutil.IsFinite(v) {
			return Result{}, fmt.Errorf("solve %s: %w: %s is %v", field, ErrInvalidInput, required.Name(), v)
		}
	}

	result := Result{Field: field}
	switch field {
	case FieldFutureValue:
		result.Value = FutureValue(in.PresentValue, in.PeriodicPayment, in.InterestRate, in.NumberOfPeriods)
	case FieldPresentValue:
		result.Value = PresentValue(in.FutureValue, in.InterestRate, in.NumberOfPeriods)
	case FieldPeriodicPayment:
		result.Value = PeriodicPayment(in.FutureValue, in.InterestRate, in.NumberOfPeriods)
	case FieldNumberOfPeriods:
		result.Value = NumberOfPeriods(in.PresentValue, in.FutureValue, in.InterestRate)
	case FieldInterestRate:
		rate, err := SolveRate(in.PresentValue, in.FutureValue, in.PeriodicPayment, in.NumberOfPeriods, s.options)
		if err != nil {
			s.logger.Debug("interest rate solve failed",
				zap.String("op", "tvm.Solve"),
				zap.Error(err),
			)
			return Result{}, err
		}
		result.Value = rate.Rate
		result.Iterations = rate.Iterations
		result.Method = rate.Method
		s.logger.Debug(fmt.Sprintf("solved interest rate %.6f%% in %d iterations", rate.Rate, rate.Iterations),
			zap.String("op", "tvm.Solve"),
			zap.String("method", rate.Method),
		)
	}

	if math.IsNaN(result.Value) {
		return Result{}, fmt.Errorf("solve %s: %w: not a number", field, ErrUndefined)
	}
	if math.IsInf(result.Value, 0) {
		return Result{}, fmt.Errorf("solve %s: %w: infinite", field, ErrUndefined)
	}
	return result, nil
}
