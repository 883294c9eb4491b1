package form

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/iwvelando/simple-finance/pkg/tvm"
	"go.uber.org/zap"
)

func newTestCalculator() *Calculator {
	return NewCalculator(zap.NewNop(), nil)
}

func TestCalculate(t *testing.T) {
	tests := []struct {
		name     string
		form     Form
		unknown  tvm.Field
		expected string
	}{
		{
			name:     "Future value",
			form:     Form{PresentValue: "1000", PeriodicPayment: "0", InterestRate: "5", NumberOfPeriods: "10"},
			unknown:  tvm.FieldFutureValue,
			expected: "1628.89",
		},
		{
			name:     "Present value",
			form:     Form{FutureValue: "1628.89", InterestRate: "5", NumberOfPeriods: "10"},
			unknown:  tvm.FieldPresentValue,
			expected: "1000.00",
		},
		{
			name:     "Periodic payment",
			form:     Form{FutureValue: "1000", InterestRate: "5", NumberOfPeriods: "10"},
			unknown:  tvm.FieldPeriodicPayment,
			expected: "79.50",
		},
		{
			name:     "Interest rate without payment field",
			form:     Form{PresentValue: "1000", FutureValue: "1628.89", NumberOfPeriods: "10"},
			unknown:  tvm.FieldInterestRate,
			expected: "5.00",
		},
		{
			name:     "Number of periods",
			form:     Form{PresentValue: "1000", FutureValue: "1628.89", InterestRate: "5"},
			unknown:  tvm.FieldNumberOfPeriods,
			expected: "10.00",
		},
		{
			name:     "Unrelated fields are ignored",
			form:     Form{PresentValue: "abc", FutureValue: "1628.89", InterestRate: "5", NumberOfPeriods: "10"},
			unknown:  tvm.FieldPresentValue,
			expected: "1000.00",
		},
	}

	calc := newTestCalculator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Display(calc.Calculate(tt.form, tt.unknown))
			if got != tt.expected {
				t.Errorf("Calculate() = %s, expected %s", got, tt.expected)
			}
		})
	}
}

func TestCalculateFallsBackToZero(t *testing.T) {
	tests := []struct {
		name    string
		form    Form
		unknown tvm.Field
	}{
		{"Empty form", Form{}, tvm.FieldFutureValue},
		{"Missing rate", Form{FutureValue: "1000", NumberOfPeriods: "10"}, tvm.FieldPresentValue},
		{"Non-numeric periods", Form{FutureValue: "1000", InterestRate: "5", NumberOfPeriods: "ten"}, tvm.FieldPeriodicPayment},
		{"NaN text", Form{PresentValue: "NaN", FutureValue: "2000", InterestRate: "5"}, tvm.FieldNumberOfPeriods},
		{"Malformed payment on rate screen", Form{PresentValue: "1000", FutureValue: "2000", PeriodicPayment: "1,000", NumberOfPeriods: "10"}, tvm.FieldInterestRate},
		{"Unknown screen", Form{PresentValue: "1"}, tvm.Field(7)},
	}

	calc := newTestCalculator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := calc.Calculate(tt.form, tt.unknown); got != 0 {
				t.Errorf("Calculate() = %v, expected 0", got)
			}
		})
	}
}

func TestCalculatePassesThroughUndefinedArithmetic(t *testing.T) {
	calc := newTestCalculator()

	fv := calc.Calculate(Form{PresentValue: "1000", PeriodicPayment: "100", InterestRate: "0", NumberOfPeriods: "10"}, tvm.FieldFutureValue)
	if !math.IsNaN(fv) {
		t.Errorf("Calculate(FV) with zero rate = %v, expected NaN", fv)
	}

	pmt := calc.Calculate(Form{FutureValue: "1000", InterestRate: "5", NumberOfPeriods: "0"}, tvm.FieldPeriodicPayment)
	if !math.IsInf(pmt, 1) {
		t.Errorf("Calculate(PMT) with zero periods = %v, expected +Inf", pmt)
	}

	rate := calc.Calculate(Form{PresentValue: "1000", FutureValue: "-1000", NumberOfPeriods: "10"}, tvm.FieldInterestRate)
	if !math.IsNaN(rate) {
		t.Errorf("Calculate(I/Y) with no solution = %v, expected NaN", rate)
	}
}

func TestEvaluate(t *testing.T) {
	calc := newTestCalculator()

	result := calc.Evaluate(Form{PresentValue: "1000", FutureValue: "2886.68", PeriodicPayment: "100", NumberOfPeriods: "10"}, tvm.FieldInterestRate)
	if result.Err != nil {
		t.Fatalf("Evaluate() error = %v", result.Err)
	}
	if result.Display != "5.00" {
		t.Errorf("Evaluate() display = %s, expected 5.00", result.Display)
	}
	if result.Iterations == 0 || result.Method == "" {
		t.Errorf("expected solver metadata, got %+v", result)
	}
}

func TestEvaluateErrors(t *testing.T) {
	tests := []struct {
		name      string
		form      Form
		unknown   tvm.Field
		wantErr   error
		fieldName string
	}{
		{"Missing input", Form{FutureValue: "1000", InterestRate: "5"}, tvm.FieldPresentValue, tvm.ErrInvalidInput, "Number of Periods"},
		{"Zero rate", Form{FutureValue: "1000", InterestRate: "0", NumberOfPeriods: "10"}, tvm.FieldPeriodicPayment, tvm.ErrUndefined, ""},
		{"Unknown screen", Form{}, tvm.Field(9), tvm.ErrUnknownField, ""},
	}

	calc := newTestCalculator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := calc.Evaluate(tt.form, tt.unknown)
			if !errors.Is(result.Err, tt.wantErr) {
				t.Fatalf("Evaluate() error = %v, expected %v", result.Err, tt.wantErr)
			}
			if result.Display != "" {
				t.Errorf("Evaluate() display = %q, expected empty", result.Display)
			}
			if tt.fieldName != "" && !strings.Contains(result.Err.Error(), tt.fieldName) {
				t.Errorf("error %q does not name %s", result.Err, tt.fieldName)
			}
		})
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		wantErr  bool
	}{
		{"1000", 1000, false},
		{" 5.25 ", 5.25, false},
		{"-42", -42, false},
		{"1e3", 1000, false},
		{"", 0, true},
		{"   ", 0, true},
		{"12abc", 0, true},
		{"Inf", 0, true},
		{"NaN", 0, true},
		{"1,000", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseNumber(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseNumber(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, tvm.ErrInvalidInput) {
				t.Errorf("ParseNumber(%q) error = %v, expected ErrInvalidInput", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseNumber(%q) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseNumberMagnitude(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
		wantErr  bool
	}{
		{"Long fraction", "0." + strings.Repeat("1", 401), 1.0 / 9, false},
		{"Long fraction with leading zeros", "0.00" + strings.Repeat("5", 450), 5.0 / 900, false},
		{"Long integer part", strings.Repeat("9", 300), 1e300, false},
		{"Underflow", "1e-999999999", 0, false},
		{"Overflow", "1e999999999", 0, true},
		{"Above float64 range", "1e400", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseNumber(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseNumber() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if math.Abs(got-tt.expected) > 1e-12*math.Max(1, math.Abs(tt.expected)) {
				t.Errorf("ParseNumber() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestFormSetAndRaw(t *testing.T) {
	var f Form
	for _, field := range tvm.Fields() {
		f.Set(field, field.Label())
	}
	for _, field := range tvm.Fields() {
		if f.Raw(field) != field.Label() {
			t.Errorf("Raw(%s) = %q, expected %q", field, f.Raw(field), field.Label())
		}
	}
}

func TestDisplay(t *testing.T) {
	tests := map[float64]string{
		1628.894626777442: "1628.89",
		0:                 "0.00",
		-79.5046:          "-79.50",
	}
	for value, expected := range tests {
		if got := Display(value); got != expected {
			t.Errorf("Display(%v) = %s, expected %s", value, got, expected)
		}
	}
}
