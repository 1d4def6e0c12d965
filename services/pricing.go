package services

import "github.com/quickbasket/storefront/models"

// PricingPolicy holds the storefront's pricing rules. All amounts are integer
// minor units, so the computation is exact.
type PricingPolicy struct {
	FreeShippingThresholdCents int64
	FlatShippingFeeCents       int64
	TaxRateBps                 int64
	Currency                   string
}

// ComputeSummary derives the cart totals from the line items. The same
// function prices the cart view, the checkout session, and the final order,
// so all three always agree.
//
// Tax is computed on the subtotal in basis points with a single half-up
// rounding at the end. The discount is clamped so the total never goes
// negative.
func (p PricingPolicy) ComputeSummary(items []models.CartItem, discountCents int64) models.CartSummary {
	var subtotal int64
	var itemCount int
	for _, item := range items {
		subtotal += item.TotalPriceCents
		itemCount += item.Quantity
	}

	var shipping int64
	if subtotal > 0 && subtotal < p.FreeShippingThresholdCents {
		shipping = p.FlatShippingFeeCents
	}

	tax := (subtotal*p.TaxRateBps + 5000) / 10000

	if discountCents < 0 {
		discountCents = 0
	}
	if max := subtotal + shipping + tax; discountCents > max {
		discountCents = max
	}

	return models.CartSummary{
		ItemCount:     itemCount,
		SubtotalCents: subtotal,
		ShippingCents: shipping,
		TaxCents:      tax,
		DiscountCents: discountCents,
		TotalCents:    subtotal + shipping + tax - discountCents,
		Currency:      p.Currency,
	}
}
