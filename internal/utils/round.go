package utils

import "github.com/shopspring/decimal"

var (
	half    = decimal.NewFromFloat(0.5)
	hundred = decimal.NewFromInt(100)
)

// Round2 rounds v to 2 decimal places for display and variance math, as
// round(v*100)/100: v*100 is taken in float64 and halves round up, so 1.005
// gives 1.00 and -0.125 gives -0.12.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v * 100).Add(half).Floor().Div(hundred).InexactFloat64()
}
