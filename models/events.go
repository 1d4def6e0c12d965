package models

import "time"

const EventOrderCreated = "order_created"

// OrderCreatedEvent is published once per successful materialization and
// consumed by the notifier. It carries everything the confirmation email
// needs so the consumer never has to read the database.
type OrderCreatedEvent struct {
	Event             string           `json:"event"`
	OrderID           string           `json:"order_id"`
	OrderNumber       string           `json:"order_number"`
	CustomerName      string           `json:"customer_name"`
	CustomerEmail     string           `json:"customer_email"`
	Items             []OrderEventItem `json:"items"`
	SubtotalCents     int64            `json:"subtotal_cents"`
	ShippingCents     int64            `json:"shipping_cents"`
	TaxCents          int64            `json:"tax_cents"`
	DiscountCents     int64            `json:"discount_cents"`
	TotalCents        int64            `json:"total_cents"`
	Currency          string           `json:"currency"`
	ShippingAddr      Address          `json:"shipping_address"`
	EstimatedDelivery *time.Time       `json:"estimated_delivery,omitempty"`
	Timestamp         time.Time        `json:"timestamp"`
}

type OrderEventItem struct {
	ProductName     string `json:"product_name"`
	Quantity        int    `json:"quantity"`
	UnitPriceCents  int64  `json:"unit_price_cents"`
	TotalPriceCents int64  `json:"total_price_cents"`
}
