package pricing

import (
	"math"
	"strings"
)

// IsValidQuantity reports whether q is a whole number greater than zero.
func IsValidQuantity(q float64) bool {
	if math.IsNaN(q) || math.IsInf(q, 0) {
		return false
	}
	return q == math.Trunc(q) && q > 0
}

// IsValidPrice reports whether price is finite and strictly positive.
func IsValidPrice(price float64) bool {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return false
	}
	return price > 0
}

// NormalizeName trims surrounding whitespace and reports whether anything
// is left.
func NormalizeName(name string) (string, bool) {
	trimmed := strings.TrimSpace(name)
	return trimmed, trimmed != ""
}

// IsPriceable reports whether every line total and summary amount derived
// from items is finite. Individually valid prices can still overflow once
// multiplied or summed.
func IsPriceable(items []Item) bool {
	for _, item := range items {
		if math.IsInf(ItemTotal(item), 0) {
			return false
		}
	}
	b := Summarize(items)
	for _, v := range []float64{b.Subtotal, b.Discount, b.AfterDiscount, b.Tax, b.Total} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
