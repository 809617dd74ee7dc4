package models

import (
	"math"

	"github.com/shopspring/decimal"
)

// QuantityEpsilon is the tolerance used when comparing share or coin amounts.
const QuantityEpsilon = 1e-9

// IsPositiveAmount reports whether v can be used as a trade quantity or price.
// NaN and infinities are rejected since decimal conversion panics on them.
func IsPositiveAmount(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

func MulMoney(a, b float64) float64 {
	return decimal.NewFromFloat(a).Mul(decimal.NewFromFloat(b)).InexactFloat64()
}

func AddMoney(a, b float64) float64 {
	return decimal.NewFromFloat(a).Add(decimal.NewFromFloat(b)).InexactFloat64()
}

func SubMoney(a, b float64) float64 {
	return decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).InexactFloat64()
}

// DivMoney returns a/b, or 0 when b is zero.
func DivMoney(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return decimal.NewFromFloat(a).Div(decimal.NewFromFloat(b)).InexactFloat64()
}
