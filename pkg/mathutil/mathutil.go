// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/simple-finance/pkg/constants"
)

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// IsFinite reports whether val is neither NaN nor an infinity.
func IsFinite(val float64) bool {
	return !math.IsNaN(val) && !math.IsInf(val, 0)
}

// ToFraction converts a percentage (5 means 5%) into a fractional rate.
func ToFraction(percent float64) float64 {
	return percent / constants.PercentageMultiplier
}

// ToPercent converts a fractional rate into a percentage.
func ToPercent(fraction float64) float64 {
	return fraction * constants.PercentageMultiplier
}
