package pricing

// Tier thresholds and rates. A subtotal that lands exactly on a threshold
// gets that tier's rate.
const (
	UpperTierThreshold = 100.0
	UpperTierRate      = 0.10
	LowerTierThreshold = 50.0
	LowerTierRate      = 0.05

	TaxRate = 0.08
)

// Item is the priced view of a cart line.
type Item struct {
	Price    float64
	Quantity int
}

// Breakdown holds every derived value shown in the cart summary.
type Breakdown struct {
	Subtotal      float64
	Discount      float64
	AfterDiscount float64
	Tax           float64
	Total         float64
}

// The explicit float64 conversions below keep each product rounded on its
// own; without them the compiler may fuse a multiply and a following add.

// ItemTotal returns price * quantity. The item is assumed valid.
func ItemTotal(item Item) float64 {
	return float64(item.Price * float64(item.Quantity))
}

// Subtotal sums the item totals in order. No rounding is applied.
func Subtotal(items []Item) float64 {
	sum := 0.0
	for _, item := range items {
		sum += ItemTotal(item)
	}
	return sum
}

// Discount returns the tiered discount for a subtotal, unrounded.
func Discount(subtotal float64) float64 {
	switch {
	case subtotal >= UpperTierThreshold:
		return float64(subtotal * UpperTierRate)
	case subtotal >= LowerTierThreshold:
		return float64(subtotal * LowerTierRate)
	default:
		return 0
	}
}

// Tax returns the flat tax on an amount. Callers pass the post-discount
// amount, never the raw subtotal.
func Tax(amount float64) float64 {
	return float64(amount * TaxRate)
}

// Total composes subtotal, discount and tax and rounds once, at the end.
func Total(items []Item) float64 {
	return Summarize(items).Total
}

// Summarize derives the full breakdown for the given items.
func Summarize(items []Item) Breakdown {
	subtotal := Subtotal(items)
	discount := Discount(subtotal)
	afterDiscount := float64(subtotal - discount)
	tax := Tax(afterDiscount)

	return Breakdown{
		Subtotal:      subtotal,
		Discount:      discount,
		AfterDiscount: afterDiscount,
		Tax:           tax,
		Total:         Round2(float64(afterDiscount + tax)),
	}
}
