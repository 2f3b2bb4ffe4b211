package calculator

import "github.com/shopspring/decimal"

// FormatAmount renders an amount with two decimal places.
// It is the only place where amounts get rounded.
func FormatAmount(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2)
}

// RoundAmount rounds an amount to cents for display.
func RoundAmount(amount float64) float64 {
	return decimal.NewFromFloat(amount).Round(2).InexactFloat64()
}
