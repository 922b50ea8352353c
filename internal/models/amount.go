package models

import (
	"github.com/shopspring/decimal"
)

var half = decimal.NewFromFloat(0.5)

// RoundHalfUp rounds to the nearest integer with ties going toward +inf,
// so 2.5 becomes 3 and -2.5 becomes -2.
func RoundHalfUp(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Add(half).Floor().Float64()
	return f
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// Grow returns base * (1 + percent/100) rounded with RoundHalfUp.
// The multiplication is done in decimal so that 1000 at 10% is exactly 1100.
func Grow(base, percent float64) float64 {
	factor := decimal.NewFromInt(1).Add(decimal.NewFromFloat(percent).Div(decimal.NewFromInt(100)))
	f, _ := decimal.NewFromFloat(base).Mul(factor).Add(half).Floor().Float64()
	return f
}

// FormatAmount renders v with a fixed number of decimals.
func FormatAmount(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}
