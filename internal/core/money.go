// Package core holds the normalized domain records and the pure ledger
// computations: money normalization, monthly aggregation and the
// duplicate-transfer matcher. Nothing in this package performs I/O.
package core

import "github.com/shopspring/decimal"

// FromMinorUnits converts an upstream minor-unit integer (cents) into an
// exact decimal currency value. 123456 becomes 1234.56, -150 becomes -1.50.
func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

// FormatAmount renders a decimal amount for display. With withCents false,
// whole amounts drop the fractional part ("12" instead of "12.00");
// everything else keeps exact two-digit cents.
func FormatAmount(d decimal.Decimal, withCents bool) string {
	if !withCents && d.IsInteger() {
		return d.StringFixed(0)
	}
	return d.StringFixed(2)
}
