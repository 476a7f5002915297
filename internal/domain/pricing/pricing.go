package pricing

import "github.com/shopspring/decimal"

var (
	// FreeShippingThreshold is the subtotal above which shipping is free.
	FreeShippingThreshold = decimal.NewFromInt(100)
	FlatShipping          = decimal.NewFromInt(10)
	TaxRate               = decimal.RequireFromString("0.07")
)

// Totals is the price breakdown of a cart.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// Compute derives shipping, tax and total from a subtotal. Tax is charged on
// the subtotal only and rounded to cents.
func Compute(subtotal decimal.Decimal) Totals {
	shipping := FlatShipping
	if subtotal.GreaterThan(FreeShippingThreshold) {
		shipping = decimal.Zero
	}
	tax := subtotal.Mul(TaxRate).Round(2)
	return Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal.Add(shipping).Add(tax),
	}
}
