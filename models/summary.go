package models

// CartSummary is derived from the current line items and never stored.
// Invariant: TotalCents == SubtotalCents + ShippingCents + TaxCents - DiscountCents.
type CartSummary struct {
	ItemCount     int    `json:"item_count"`
	SubtotalCents int64  `json:"subtotal_cents"`
	ShippingCents int64  `json:"shipping_cents"`
	TaxCents      int64  `json:"tax_cents"`
	DiscountCents int64  `json:"discount_cents"`
	TotalCents    int64  `json:"total_cents"`
	Currency      string `json:"currency"`
}
