package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quickbasket/storefront/models"
	"github.com/quickbasket/storefront/services"
)

type mockGateway struct {
	session  *services.CheckoutSession
	err      error
	calls    int
	lastCart *models.Cart
	lastOpts services.CheckoutOptions
}

func (m *mockGateway) CreateCheckoutSession(_ context.Context, cart *models.Cart, opts services.CheckoutOptions) (*services.CheckoutSession, error) {
	m.calls++
	m.lastCart = cart
	m.lastOpts = opts
	return m.session, m.err
}

func TestStartCheckout_Success(t *testing.T) {
	repo := newMemCartRepo()
	cartSvc := newCartService(repo, catalog())
	gateway := &mockGateway{session: &services.CheckoutSession{ID: "cs_123", URL: "https://pay.test/cs_123"}}
	svc := services.NewCheckoutService(cartSvc, gateway)
	ctx := context.Background()

	_, err := cartSvc.AddToCart(ctx, "sess-1", "sku-mug", "", 2)
	assert.NoError(t, err)

	checkout, err := svc.StartCheckout(ctx, "sess-1", services.CheckoutOptions{CustomerEmail: "a@b.test"})
	assert.NoError(t, err)
	assert.Equal(t, "cs_123", checkout.ID)
	assert.Equal(t, "https://pay.test/cs_123", checkout.URL)
	assert.Equal(t, "a@b.test", gateway.lastOpts.CustomerEmail)

	// The gateway is priced from the same summary the client sees.
	assert.Equal(t, int64(3000), gateway.lastCart.Summary.SubtotalCents)

	// Starting checkout must not touch the cart.
	cart, err := cartSvc.GetCart(ctx, "sess-1")
	assert.NoError(t, err)
	assert.Len(t, cart.Items, 1)
}

func TestStartCheckout_EmptyCart(t *testing.T) {
	gateway := &mockGateway{}
	svc := services.NewCheckoutService(newCartService(newMemCartRepo(), catalog()), gateway)

	_, err := svc.StartCheckout(context.Background(), "sess-1", services.CheckoutOptions{})
	assert.ErrorIs(t, err, services.ErrEmptyCart)
	assert.Zero(t, gateway.calls, "provider must not be called for an empty cart")
}

func TestStartCheckout_ProviderFailure(t *testing.T) {
	repo := newMemCartRepo()
	cartSvc := newCartService(repo, catalog())
	gateway := &mockGateway{err: errors.New("stripe: boom")}
	svc := services.NewCheckoutService(cartSvc, gateway)
	ctx := context.Background()

	_, err := cartSvc.AddToCart(ctx, "sess-1", "sku-mug", "", 1)
	assert.NoError(t, err)

	_, err = svc.StartCheckout(ctx, "sess-1", services.CheckoutOptions{})
	assert.ErrorIs(t, err, services.ErrPaymentProvider)

	// The underlying cause stays attached for the logs.
	var svcErr *services.ServiceError
	assert.ErrorAs(t, err, &svcErr)
	assert.ErrorContains(t, svcErr.Err, "boom")
}
