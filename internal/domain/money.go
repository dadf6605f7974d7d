package domain

import (
	"fmt"
	"math"
)

// PriceToTicks converts a float64 price to int64 ticks (cents).
// It validates that the input has at most 2 decimal places and returns
// an error if more precision is provided. Uses math.Round after
// multiplying by 100 to handle floating-point representation issues.
func PriceToTicks(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("price must be a finite number")
	}

	// Multiply by 1000 to check for a third decimal place.
	// Round to avoid floating-point artifacts (e.g., 1.10 * 1000 = 1099.9999...).
	scaled := math.Round(f * 1000)
	if math.Mod(scaled, 10) != 0 {
		return 0, fmt.Errorf("prices must have at most 2 decimal places")
	}

	return int64(math.Round(f * 100)), nil
}

// TicksToPrice converts int64 ticks back to a float64 price.
func TicksToPrice(t int64) float64 {
	return float64(t) / 100.0
}
