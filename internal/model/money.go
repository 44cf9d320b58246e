package model

import (
	"github.com/shopspring/decimal"
)

// FromCents converts an upstream amount in minor units to a storefront price.
// The checkout and search APIs return every price in cents (9990 = 99.90).
// Examples: 9990 → 99.9, 100 → 1, 0 → 0
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// FromFloat converts a search API price (major units, float) to a decimal
// with cent precision.
func FromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f).Round(2)
}
