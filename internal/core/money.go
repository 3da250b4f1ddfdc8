// Package core holds the domain types shared by the store, the rate
// provider and the report engine.
//
// This file contains the money arithmetic used when building reports:
// cross-rate conversion over a rate table and cent rounding.
package core

import "math"

// Round2 rounds to two decimal places, half away from zero.
// All report totals pass through here so the rounding policy is
// applied in exactly one place.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Convert converts an amount between two currencies using a rate table
// expressed against a single common base currency. The assumption of a
// fixed base is a documented contract of the rate endpoint, not
// something the table itself can express.
//
// A currency missing from the table (or carrying a non-positive rate,
// which the endpoint contract forbids) falls back to rate 1, leaving
// that side of the conversion untouched. With an empty table the
// amount passes through unchanged.
func Convert(sum float64, from, to string, rates RateMap) float64 {
	fromRate, ok := rates[from]
	if !ok || fromRate <= 0 {
		fromRate = 1
	}
	toRate, ok := rates[to]
	if !ok || toRate <= 0 {
		toRate = 1
	}
	return sum / fromRate * toRate
}
