package models

// Product is read-only reference data owned by the catalog; the cart only
// resolves ids and denormalizes display fields from it.
type Product struct {
	ID         string           `json:"id" bson:"_id"`
	Name       string           `json:"name" bson:"name"`
	PriceCents int64            `json:"price_cents" bson:"price_cents"`
	Currency   string           `json:"currency" bson:"currency"`
	CategoryID string           `json:"category_id,omitempty" bson:"category_id,omitempty"`
	Images     []string         `json:"images,omitempty" bson:"images,omitempty"`
	Stock      int              `json:"stock" bson:"stock"`
	TrackStock bool             `json:"track_stock" bson:"track_stock"`
	Variants   []ProductVariant `json:"variants,omitempty" bson:"variants,omitempty"`
}

type ProductVariant struct {
	ID                   string `json:"id" bson:"id"`
	Name                 string `json:"name" bson:"name"`
	PriceAdjustmentCents int64  `json:"price_adjustment_cents" bson:"price_adjustment_cents"`
}

// Variant returns the variant with the given id, or nil.
func (p *Product) Variant(variantID string) *ProductVariant {
	for i := range p.Variants {
		if p.Variants[i].ID == variantID {
			return &p.Variants[i]
		}
	}
	return nil
}

// UnitPriceCents is the effective unit price for the given variant id
// (empty id means the base product).
func (p *Product) UnitPriceCents(variantID string) int64 {
	if v := p.Variant(variantID); v != nil {
		return p.PriceCents + v.PriceAdjustmentCents
	}
	return p.PriceCents
}

// MainImage returns the first catalog image, if any.
func (p *Product) MainImage() string {
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	return ""
}
