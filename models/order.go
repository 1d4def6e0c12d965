package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	OrderStatusProcessing = "processing"
	OrderStatusCancelled  = "cancelled"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusRefunded   = "refunded"
)

// Address is a structured postal address embedded on the order.
type Address struct {
	Line1      string `gorm:"size:255" json:"line1"`
	Line2      string `gorm:"size:255" json:"line2,omitempty"`
	City       string `gorm:"size:128" json:"city"`
	State      string `gorm:"size:128" json:"state,omitempty"`
	PostalCode string `gorm:"size:32" json:"postal_code"`
	Country    string `gorm:"size:8" json:"country"`
}

// Order is the immutable snapshot created exactly once per successful payment.
// Monetary fields and items are frozen at creation; only status and the
// payment correlation ids may change afterwards.
type Order struct {
	ID                    uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderNumber           string    `gorm:"uniqueIndex;not null" json:"order_number"`
	CartSessionID         string    `gorm:"size:64;not null;index" json:"-"`
	StripeSessionID       string    `gorm:"uniqueIndex;not null" json:"stripe_session_id"`
	StripePaymentIntentID string    `gorm:"index" json:"stripe_payment_intent_id,omitempty"`
	Status                string    `gorm:"type:varchar(20);not null;default:'processing'" json:"status"`
	SubtotalCents         int64     `gorm:"not null" json:"subtotal_cents"`
	ShippingCents         int64     `gorm:"not null" json:"shipping_cents"`
	TaxCents              int64     `gorm:"not null" json:"tax_cents"`
	DiscountCents         int64     `gorm:"not null" json:"discount_cents"`
	TotalCents            int64     `gorm:"not null" json:"total_cents"`
	Currency              string    `gorm:"type:varchar(10);not null" json:"currency"`
	CustomerName          string    `gorm:"size:255" json:"customer_name"`
	CustomerEmail         string    `gorm:"size:255;index" json:"customer_email"`
	ShippingAddress       Address   `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`
	BillingAddress        Address   `gorm:"embedded;embeddedPrefix:billing_" json:"billing_address"`
	EstimatedDelivery     *time.Time `json:"estimated_delivery,omitempty"`
	CancelledAt           *time.Time
	CreatedAt             time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt             gorm.DeletedAt `gorm:"index" json:"-"`
	OrderItems            []OrderItem    `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

// OrderItem snapshots a cart line as it was at materialization time,
// independent of later catalog changes. Immutable once written.
type OrderItem struct {
	ID              uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID         uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	ProductID       string    `gorm:"size:64;not null" json:"product_id"`
	VariantID       string    `gorm:"size:64;not null;default:''" json:"variant_id,omitempty"`
	ProductName     string    `gorm:"size:255;not null" json:"product_name"`
	Quantity        int       `gorm:"not null" json:"quantity"`
	UnitPriceCents  int64     `gorm:"not null" json:"unit_price_cents"`
	TotalPriceCents int64     `gorm:"not null" json:"total_price_cents"`
}
