package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quickbasket/storefront/models"
	"github.com/quickbasket/storefront/services"
)

var testPolicy = services.PricingPolicy{
	FreeShippingThresholdCents: 10000,
	FlatShippingFeeCents:       700,
	TaxRateBps:                 875,
	Currency:                   "usd",
}

func item(qty int, unitCents int64) models.CartItem {
	return models.CartItem{
		Quantity:        qty,
		UnitPriceCents:  unitCents,
		TotalPriceCents: unitCents * int64(qty),
	}
}

func TestComputeSummary_EmptyCart(t *testing.T) {
	s := testPolicy.ComputeSummary(nil, 0)

	assert.Equal(t, 0, s.ItemCount)
	assert.Zero(t, s.SubtotalCents)
	assert.Zero(t, s.ShippingCents, "empty cart must not be charged shipping")
	assert.Zero(t, s.TaxCents)
	assert.Zero(t, s.TotalCents)
}

func TestComputeSummary_FlatShippingBelowThreshold(t *testing.T) {
	s := testPolicy.ComputeSummary([]models.CartItem{item(2, 1999)}, 0)

	assert.Equal(t, int64(3998), s.SubtotalCents)
	assert.Equal(t, int64(700), s.ShippingCents)
	// 3998 * 875 / 10000 = 349.825 → 350 half-up
	assert.Equal(t, int64(350), s.TaxCents)
	assert.Equal(t, s.SubtotalCents+s.ShippingCents+s.TaxCents, s.TotalCents)
}

func TestComputeSummary_FreeShippingAtThreshold(t *testing.T) {
	s := testPolicy.ComputeSummary([]models.CartItem{item(1, 10000)}, 0)
	assert.Zero(t, s.ShippingCents)

	s = testPolicy.ComputeSummary([]models.CartItem{item(1, 9999)}, 0)
	assert.Equal(t, int64(700), s.ShippingCents)
}

func TestComputeSummary_TaxRoundsHalfUpOnce(t *testing.T) {
	// 57 * 875 = 49875 → 4.9875 cents → 5
	s := testPolicy.ComputeSummary([]models.CartItem{item(1, 57)}, 0)
	assert.Equal(t, int64(5), s.TaxCents)

	// 51 * 875 = 44625 → 4.4625 → 4
	s = testPolicy.ComputeSummary([]models.CartItem{item(1, 51)}, 0)
	assert.Equal(t, int64(4), s.TaxCents)

	// Rounding happens on the summed subtotal, not per line.
	s = testPolicy.ComputeSummary([]models.CartItem{item(1, 57), item(1, 57)}, 0)
	assert.Equal(t, int64(10), s.TaxCents)
}

func TestComputeSummary_ItemCountSumsQuantities(t *testing.T) {
	s := testPolicy.ComputeSummary([]models.CartItem{item(2, 500), item(3, 250)}, 0)
	assert.Equal(t, 5, s.ItemCount)
}

func TestComputeSummary_DiscountApplied(t *testing.T) {
	s := testPolicy.ComputeSummary([]models.CartItem{item(1, 20000)}, 1500)

	assert.Equal(t, int64(1500), s.DiscountCents)
	assert.Equal(t, s.SubtotalCents+s.ShippingCents+s.TaxCents-s.DiscountCents, s.TotalCents)
}

func TestComputeSummary_DiscountClamped(t *testing.T) {
	s := testPolicy.ComputeSummary([]models.CartItem{item(1, 100)}, 1_000_000)
	assert.Zero(t, s.TotalCents, "total must never go negative")

	s = testPolicy.ComputeSummary([]models.CartItem{item(1, 100)}, -50)
	assert.Zero(t, s.DiscountCents, "negative discount is ignored")
}

func TestComputeSummary_InvariantHolds(t *testing.T) {
	carts := [][]models.CartItem{
		nil,
		{item(1, 1)},
		{item(3, 333), item(7, 12345)},
		{item(1, 9999), item(1, 1)},
	}
	for _, items := range carts {
		s := testPolicy.ComputeSummary(items, 250)
		assert.Equal(t, s.SubtotalCents+s.ShippingCents+s.TaxCents-s.DiscountCents, s.TotalCents)
	}
}
