package exporter

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// formatFloat formats a value with full precision; NaN is written as "NaN"
func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// formatFixed rounds to places decimals, half away from zero
func formatFixed(f float64, places int32) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return formatFloat(f)
	}
	return decimal.NewFromFloat(f).StringFixed(places)
}

// formatInt formats an int value for CSV output
func formatInt(i int) string {
	return strconv.Itoa(i)
}
