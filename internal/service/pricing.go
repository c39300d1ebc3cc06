package service

// Pricing is the single source of truth for the shipping rule. Both the
// cart view and order creation price through it; clients only display the
// server-provided figures.
type Pricing struct {
	ShippingFee           float64
	FreeShippingThreshold float64
}

// ShippingFeeFor returns the fee for the given subtotal. A zero threshold
// disables free shipping.
func (p Pricing) ShippingFeeFor(subtotal float64) float64 {
	if subtotal <= 0 {
		return 0
	}
	if p.FreeShippingThreshold > 0 && subtotal >= p.FreeShippingThreshold {
		return 0
	}
	return p.ShippingFee
}
