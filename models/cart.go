package models

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is one product (optionally one variant) in one session's cart.
// Display fields are denormalized from the catalog at add time so the cart
// survives later catalog edits. At most one row exists per
// (session_id, product_id, variant_id); adds against an existing key
// increment quantity instead of inserting a second row.
type CartItem struct {
	ID              uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"cart_item_id"`
	SessionID       string    `gorm:"size:64;not null;index;uniqueIndex:idx_cart_line,priority:1" json:"session_id"`
	ProductID       string    `gorm:"size:64;not null;uniqueIndex:idx_cart_line,priority:2" json:"product_id"`
	VariantID       string    `gorm:"size:64;not null;default:'';uniqueIndex:idx_cart_line,priority:3" json:"variant_id,omitempty"`
	Quantity        int       `gorm:"not null" json:"quantity"`
	ProductName     string    `gorm:"size:255;not null" json:"product_name"`
	UnitPriceCents  int64     `gorm:"not null" json:"unit_price_cents"`
	Currency        string    `gorm:"type:varchar(10);not null" json:"currency"`
	ImageURL        string    `gorm:"size:1024" json:"image_url,omitempty"`
	TotalPriceCents int64     `gorm:"not null" json:"total_price_cents"`
	ExpiresAt       time.Time `gorm:"index" json:"-"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"-"`
}

// Cart is the session-scoped view handed to the HTTP layer: the persisted
// line items plus a summary recomputed fresh from them.
type Cart struct {
	SessionID string      `json:"session_id"`
	Items     []CartItem  `json:"items"`
	Summary   CartSummary `json:"summary"`
}

// ItemQuantity is a pure lookup against the already-loaded items; it never
// touches the network. Returns 0 when the line is absent.
func (c *Cart) ItemQuantity(productID, variantID string) int {
	for _, item := range c.Items {
		if item.ProductID == productID && item.VariantID == variantID {
			return item.Quantity
		}
	}
	return 0
}
