package model

import (
	"fmt"
	"math"
	"strconv"
)

// ParseCents converts decimal string amounts (major units) to cents (int64).
// The storefront services exchange prices as major-unit decimals
// (e.g., "99.00" = $99.00); all arithmetic here happens in minor units.
// Handles edge cases: empty strings, missing decimals, large values.
// Examples: "99.00" → 9900, "1234.56" → 123456, "" → 0
func ParseCents(s string) int64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	// math.Round handles both positive and negative numbers correctly
	return int64(math.Round(f * 100))
}

// FormatDecimal renders cents as a major-unit decimal string without a
// currency symbol, the format the remote services expect in request
// bodies. Examples: 9900 → "99.00", -150 → "-1.50"
func FormatDecimal(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// FormatCents renders cents as a display amount with a dollar sign.
// Examples: 9900 → "$99.00"
func FormatCents(cents int64) string {
	if cents < 0 {
		return "-$" + FormatDecimal(-cents)
	}
	return "$" + FormatDecimal(cents)
}
