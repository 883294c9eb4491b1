// Package form adapts raw text-field input into TVM calculations and formats
// the result for display. It is the boundary a presentation layer talks to.
package form

import (
	"fmt"
	"math"
	"strings"

	"github.com/iwvelando/simple-finance/pkg/constants"
	"github.com/iwvelando/simple-finance/pkg/mathutil"
	"github.com/iwvelando/simple-finance/pkg/tvm"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Form holds the raw strings typed into the five text fields. A single Form
// serves every screen; each screen reads only the fields it needs.
type Form struct {
	PresentValue    string `json:"presentValue"`
	FutureValue     string `json:"futureValue"`
	PeriodicPayment string `json:"periodicPayment"`
	InterestRate    string `json:"interestRate"`
	NumberOfPeriods string `json:"numberOfPeriods"`
}

// Raw returns the text entered for field.
func (f Form) Raw(field tvm.Field) string {
	switch field {
	case tvm.FieldPresentValue:
		return f.PresentValue
	case tvm.FieldFutureValue:
		return f.FutureValue
	case tvm.FieldPeriodicPayment:
		return f.PeriodicPayment
	case tvm.FieldInterestRate:
		return f.InterestRate
	case tvm.FieldNumberOfPeriods:
		return f.NumberOfPeriods
	}
	return ""
}

// Set stores text for field.
func (f *Form) Set(field tvm.Field, text string) {
	switch field {
	case tvm.FieldPresentValue:
		f.PresentValue = text
	case tvm.FieldFutureValue:
		f.FutureValue = text
	case tvm.FieldPeriodicPayment:
		f.PeriodicPayment = text
	case tvm.FieldInterestRate:
		f.InterestRate = text
	case tvm.FieldNumberOfPeriods:
		f.NumberOfPeriods = text
	}
}

// maxMagnitude bounds the decimal order of magnitude converted to float64.
// Values beyond it overflow or underflow float64 anyway.
const maxMagnitude = 400

// ParseNumber converts one text field into a float64. Blank, malformed and
// non-finite text is rejected; values too small for float64 become 0.
func ParseNumber(text string) (float64, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0, fmt.Errorf("%w: empty value", tvm.ErrInvalidInput)
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", tvm.ErrInvalidInput, text)
	}
	magnitude := d.NumDigits() + int(d.Exponent())
	if magnitude > maxMagnitude {
		return 0, fmt.Errorf("%w: %q is out of range", tvm.ErrInvalidInput, text)
	}
	if magnitude < -maxMagnitude {
		return 0, nil
	}
	value, _ := d.Float64()
	if !mathutil.IsFinite(value) {
		return 0, fmt.Errorf("%w: %q is not finite", tvm.ErrInvalidInput, text)
	}
	return value, nil
}

// Inputs parses the fields the screen solving for unknown collects.
func (f Form) Inputs(unknown tvm.Field) (tvm.Inputs, error) {
	screen, ok := ScreenFor(unknown)
	if !ok {
		return tvm.Inputs{}, fmt.Errorf("%w: %d", tvm.ErrUnknownField, int(unknown))
	}

	var in tvm.Inputs
	for _, input := range screen.Inputs {
		raw := f.Raw(input.Field)
		if input.Optional && strings.TrimSpace(raw) == "" {
			continue
		}
		value, err := ParseNumber(raw)
		if err != nil {
			return tvm.Inputs{}, fmt.Errorf("%s: %w", input.Field.Name(), err)
		}
		in = in.With(input.Field, value)
	}
	return in, nil
}

// Display formats a calculated value to two decimal places.
func Display(value float64) string {
	return fmt.Sprintf(constants.DisplayFormat, value)
}

// Result is a checked calculation for one screen.
type Result struct {
	Unknown    tvm.Field
	Value      float64
	Display    string
	Iterations int
	Method     string
	Err        error
}

// Calculator evaluates forms against a TVM solver.
type Calculator struct {
	logger *zap.Logger
	solver *tvm.Solver
}

// NewCalculator creates a Calculator. A nil solver uses the default options.
func NewCalculator(logger *zap.Logger, solver *tvm.Solver) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if solver == nil {
		solver = tvm.NewSolver(logger, tvm.DefaultRateOptions())
	}
	return &Calculator{logger: logger, solver: solver}
}

// Calculate returns the value a screen displays. Missing or malformed input
// yields 0. The closed-form calculations are not guarded, so a zero rate or
// similar degenerate input comes back as NaN or an infinity; an interest rate
// with no solution comes back as NaN.
func (c *Calculator) Calculate(f Form, unknown tvm.Field) float64 {
	in, err := f.Inputs(unknown)
	if err != nil {
		c.logger.Debug("falling back to zero for unparsable input",
			zap.String("op", "form.Calculate"),
			zap.Stringer("unknown", unknown),
			zap.Error(err),
		)
		return 0
	}

	switch unknown {
	case tvm.FieldFutureValue:
		return tvm.FutureValue(in.PresentValue, in.PeriodicPayment, in.InterestRate, in.NumberOfPeriods)
	case tvm.FieldPresentValue:
		return tvm.PresentValue(in.FutureValue, in.InterestRate, in.NumberOfPeriods)
	case tvm.FieldPeriodicPayment:
		return tvm.PeriodicPayment(in.FutureValue, in.InterestRate, in.NumberOfPeriods)
	case tvm.FieldNumberOfPeriods:
		return tvm.NumberOfPeriods(in.PresentValue, in.FutureValue, in.InterestRate)
	case tvm.FieldInterestRate:
		result, err := c.solver.Solve(unknown, in)
		if err != nil {
			c.logger.Debug("interest rate unavailable",
				zap.String("op", "form.Calculate"),
				zap.Error(err),
			)
			return math.NaN()
		}
		return result.Value
	}
	return 0
}

// Evaluate is the checked counterpart of Calculate: parse failures and
// undefined results are reported in Result.Err and Display is left empty.
func (c *Calculator) Evaluate(f Form, unknown tvm.Field) Result {
	result := Result{Unknown: unknown}

	in, err := f.Inputs(unknown)
	if err != nil {
		result.Err = err
		return result
	}

	solved, err := c.solver.Solve(unknown, in)
	if err != nil {
		result.Err = err
		return result
	}

	result.Value = solved.Value
	result.Display = Display(solved.Value)
	result.Iterations = solved.Iterations
	result.Method = solved.Method
	c.logger.Debug(fmt.Sprintf("calculated %s = %s", unknown.Name(), result.Display),
		zap.String("op", "form.Evaluate"),
	)
	return result
}
