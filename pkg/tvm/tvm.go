// Package tvm implements the elementary time-value-of-money calculations:
// future value, present value, periodic payment, interest rate and number of
// periods. Given four of the five quantities it computes the fifth.
//
// Interest rates are expressed in percent per period (5 means 5%) at every
// public boundary and converted to a fractional rate internally.
//
// The closed-form functions in this file perform unguarded floating-point
// arithmetic and may return NaN or an infinity for degenerate inputs (for
// example a zero rate in the annuity formulas). Use Solve or Solver.Solve
// when a checked result is required.
package tvm

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/iwvelando/simple-finance/pkg/mathutil"
)

var (
	// ErrInvalidInput indicates a missing, unparsable or non-finite input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUndefined indicates the result is mathematically undefined for the
	// supplied inputs (division by zero, log of a non-positive value, ...).
	ErrUndefined = errors.New("result undefined")

	// ErrNoSolution indicates the interest rate solver found no rate that
	// satisfies the future value equation within the search range.
	ErrNoSolution = errors.New("no interest rate solution")

	// ErrUnknownField indicates an unrecognized field selector.
	ErrUnknownField = errors.New("unknown field")
)

// Field selects one of the five TVM quantities.
type Field int

// The five TVM quantities, in the order the calculator presents them.
const (
	FieldFutureValue Field = iota
	FieldPresentValue
	FieldPeriodicPayment
	FieldInterestRate
	FieldNumberOfPeriods
)

type fieldInfo struct {
	key   string
	label string
	name  string
}

var fieldInfos = map[Field]fieldInfo{
	FieldFutureValue:     {key: "fv", label: "FV", name: "Future Value"},
	FieldPresentValue:    {key: "pv", label: "PV", name: "Present Value"},
	FieldPeriodicPayment: {key: "pmt", label: "PMT", name: "Periodic Payment"},
	FieldInterestRate:    {key: "rate", label: "I/Y", name: "Interest Rate"},
	FieldNumberOfPeriods: {key: "n", label: "N", name: "Number of Periods"},
}

// Fields returns all fields in presentation order.
func Fields() []Field {
	return []Field{
		FieldFutureValue,
		FieldPresentValue,
		FieldPeriodicPayment,
		FieldInterestRate,
		FieldNumberOfPeriods,
	}
}

// String returns the short machine key (fv, pv, pmt, rate, n).
func (f Field) String() string {
	if info, ok := fieldInfos[f]; ok {
		return info.key
	}
	return fmt.Sprintf("field(%d)", int(f))
}

// Label returns the calculator label (FV, PV, PMT, I/Y, N).
func (f Field) Label() string {
	return fieldInfos[f].label
}

// Name returns the long human-readable name, e.g. "Future Value".
func (f Field) Name() string {
	return fieldInfos[f].name
}

// Valid reports whether f is one of the five known fields.
func (f Field) Valid() bool {
	_, ok := fieldInfos[f]
	return ok
}

// MarshalText implements encoding.TextMarshaler.
func (f Field) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownField, int(f))
	}
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Field) UnmarshalText(text []byte) error {
	parsed, err := ParseField(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// ParseField accepts a machine key (fv), a label (I/Y) or a long name
// ("future value", "futureValue"), case-insensitively.
func ParseField(value string) (Field, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	compact := strings.NewReplacer(" ", "", "_", "", "-", "").Replace(normalized)
	for _, field := range Fields() {
		info := fieldInfos[field]
		if normalized == info.key || normalized == strings.ToLower(info.label) {
			return field, nil
		}
		if compact == strings.ToLower(strings.ReplaceAll(info.name, " ", "")) {
			return field, nil
		}
	}
	switch compact {
	case "iy", "interest", "i":
		return FieldInterestRate, nil
	case "periods", "nper":
		return FieldNumberOfPeriods, nil
	case "payment":
		return FieldPeriodicPayment, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownField, value)
}

// Inputs holds the five TVM quantities for one calculation. The field being
// solved for is ignored; the others are the known values.
type Inputs struct {
	PresentValue    float64 `json:"presentValue"`
	FutureValue     float64 `json:"futureValue"`
	PeriodicPayment float64 `json:"periodicPayment"`
	InterestRate    float64 `json:"interestRate"` // percent per period
	NumberOfPeriods float64 `json:"numberOfPeriods"`
}

// Value returns the value held for field.
func (in Inputs) Value(field Field) float64 {
	switch field {
	case FieldPresentValue:
		return in.PresentValue
	case FieldFutureValue:
		return in.FutureValue
	case FieldPeriodicPayment:
		return in.PeriodicPayment
	case FieldInterestRate:
		return in.InterestRate
	case FieldNumberOfPeriods:
		return in.NumberOfPeriods
	}
	return 0
}

// With returns a copy of in with field set to value.
func (in Inputs) With(field Field, value float64) Inputs {
	switch field {
	case FieldPresentValue:
		in.PresentValue = value
	case FieldFutureValue:
		in.FutureValue = value
	case FieldPeriodicPayment:
		in.PeriodicPayment = value
	case FieldInterestRate:
		in.InterestRate = value
	case FieldNumberOfPeriods:
		in.NumberOfPeriods = value
	}
	return in
}

// Required lists the known quantities a calculation for field consumes.
func Required(field Field) []Field {
	switch field {
	case FieldFutureValue:
		return []Field{FieldPresentValue, FieldPeriodicPayment, FieldInterestRate, FieldNumberOfPeriods}
	case FieldPresentValue, FieldPeriodicPayment:
		return []Field{FieldFutureValue, FieldInterestRate, FieldNumberOfPeriods}
	case FieldInterestRate:
		return []Field{FieldPresentValue, FieldFutureValue, FieldPeriodicPayment, FieldNumberOfPeriods}
	case FieldNumberOfPeriods:
		return []Field{FieldPresentValue, FieldFutureValue, FieldInterestRate}
	}
	return nil
}

// FutureValue computes pv·(1+r)^n + pmt·((1+r)^n − 1)/r.
func FutureValue(pv, pmt, ratePercent, n float64) float64 {
	r := mathutil.ToFraction(ratePercent)
	growth := math.Pow(1+r, n)
	return pv*growth + pmt*(growth-1)/r
}

// PresentValue discounts fv over n periods: fv / (1+r)^n.
func PresentValue(fv, ratePercent, n float64) float64 {
	r := mathutil.ToFraction(ratePercent)
	return fv / math.Pow(1+r, n)
}

// PeriodicPayment returns the sinking-fund payment that accumulates to fv:
// fv·r / ((1+r)^n − 1).
func PeriodicPayment(fv, ratePercent, n float64) float64 {
	r := mathutil.ToFraction(ratePercent)
	return fv * r / (math.Pow(1+r, n) - 1)
}

// NumberOfPeriods returns ln(fv/pv) / ln(1+r).
func NumberOfPeriods(pv, fv, ratePercent float64) float64 {
	r := mathutil.ToFraction(ratePercent)
	return math.Log(fv/pv) / math.Log(1+r)
}

// InterestRate solves for the per-period rate, in percent, that grows pv
// plus the payment stream pmt into fv over n periods. It uses the default
// solver options.
func InterestRate(pv, fv, pmt, n float64) (float64, error) {
	result, err := SolveRate(pv, fv, pmt, n, DefaultRateOptions())
	if err != nil {
		return 0, err
	}
	return result.Rate, nil
}
