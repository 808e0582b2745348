package pricing

import (
	"math"
	"math/big"
	"strconv"

	"github.com/shopspring/decimal"
)

// Magnitudes at or above this are printed in shortest form instead of
// fixed-point, matching the fixed-decimal conversion browsers use.
const fixedNotationLimit = 1e21

var five = big.NewInt(5)

// FormatCurrency renders amount as "$" followed by exactly two decimals.
//
// Rounding works on the exact binary value of amount, so 5.555 (stored as
// 5.55499999...) renders as "$5.55".
func FormatCurrency(amount float64) string {
	return "$" + fixed2(amount)
}

// Round2 rounds amount to two decimals with the same rules FormatCurrency
// uses and converts the result back to the nearest float64.
func Round2(amount float64) float64 {
	f, err := strconv.ParseFloat(fixed2(amount), 64)
	if err != nil {
		return amount
	}
	return f
}

// fixed2 converts amount to a string with two fractional digits. Exact
// ties are resolved away from zero.
func fixed2(amount float64) string {
	switch {
	case math.IsNaN(amount):
		return "NaN"
	case math.IsInf(amount, 1):
		return "Infinity"
	case math.IsInf(amount, -1):
		return "-Infinity"
	}

	abs := math.Abs(amount)
	if abs >= fixedNotationLimit {
		return strconv.FormatFloat(amount, 'g', -1, 64)
	}

	sign := ""
	if amount < 0 {
		sign = "-"
	}
	return sign + exactDecimal(abs).StringFixed(2)
}

// exactDecimal returns the exact decimal value of a non-negative, finite
// float64. Every binary fraction m*2^-k equals m*5^k*10^-k.
func exactDecimal(v float64) decimal.Decimal {
	if v == 0 {
		return decimal.Zero
	}

	frac, exp := math.Frexp(v)
	mant := big.NewInt(int64(frac * (1 << 53)))
	shift := exp - 53

	if shift >= 0 {
		return decimal.NewFromBigInt(mant.Lsh(mant, uint(shift)), 0)
	}

	k := int64(-shift)
	scale := new(big.Int).Exp(five, big.NewInt(k), nil)
	return decimal.NewFromBigInt(mant.Mul(mant, scale), int32(-k))
}
