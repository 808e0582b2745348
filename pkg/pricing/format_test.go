package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		want   string
	}{
		{"Whole number", 10, "$10.00"},
		{"Hundred", 100, "$100.00"},
		{"Zero", 0, "$0.00"},
		{"Two decimals", 9.99, "$9.99"},
		{"Trailing zero", 12.50, "$12.50"},
		{"Ninety nine ninety five", 99.95, "$99.95"},
		{"Single decimal", 5.5, "$5.50"},
		{"Ten ten", 10.1, "$10.10"},
		{"Rounds up into next whole", 9.999, "$10.00"},
		{"Binary representation below the tie", 5.555, "$5.55"},
		{"Binary representation below the tie again", 1.005, "$1.00"},
		{"Rounds up", 12.346, "$12.35"},
		{"Exact tie goes away from zero", 0.125, "$0.13"},
		{"One cent", 0.01, "$0.01"},
		{"Ninety nine cents", 0.99, "$0.99"},
		{"Thousand", 1000, "$1000.00"},
		{"Large", 9999.99, "$9999.99"},
		{"Negative", -2.5, "$-2.50"},
		{"Negative rounding to zero keeps sign", -0.001, "$-0.00"},
		{"Negative zero", math.Copysign(0, -1), "$0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCurrency(tt.amount))
		})
	}
}

func TestFormatCurrencyNonFinite(t *testing.T) {
	assert.Equal(t, "$NaN", FormatCurrency(math.NaN()))
	assert.Equal(t, "$Infinity", FormatCurrency(math.Inf(1)))
	assert.Equal(t, "$-Infinity", FormatCurrency(math.Inf(-1)))
	assert.Equal(t, "$1e+21", FormatCurrency(1e21))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 32.37, Round2(32.3676))
	assert.Equal(t, 5.55, Round2(5.555))
	assert.Equal(t, 0.13, Round2(0.125))
	assert.Equal(t, 10.0, Round2(9.999))
	assert.Equal(t, 61.56, Round2(57+Tax(57)))
	assert.True(t, math.IsNaN(Round2(math.NaN())))
	assert.Equal(t, 1e21, Round2(1e21))
}

func TestExactDecimal(t *testing.T) {
	assert.Equal(t, "0.125", exactDecimal(0.125).String())
	assert.Equal(t, "9007199254740992", exactDecimal(1<<53).String())
	assert.Equal(t, "5.55499999999999971578290569595992565155029296875", exactDecimal(5.555).String())
}
