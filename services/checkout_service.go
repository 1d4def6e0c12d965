package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/quickbasket/storefront/logger"
	"github.com/quickbasket/storefront/models"
)

// CheckoutOptions are optional client overrides for the payment session.
type CheckoutOptions struct {
	SuccessURL    string `json:"success_url"`
	CancelURL     string `json:"cancel_url"`
	CustomerEmail string `json:"customer_email"`
}

// PaymentGateway abstracts the hosted payment provider.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, cart *models.Cart, opts CheckoutOptions) (*CheckoutSession, error)
}

// CheckoutService starts a hosted payment session from the current cart.
type CheckoutService struct {
	carts   *CartService
	gateway PaymentGateway
}

func NewCheckoutService(carts *CartService, gateway PaymentGateway) *CheckoutService {
	return &CheckoutService{carts: carts, gateway: gateway}
}

// StartCheckout prices the session's cart and opens a payment session for it.
// The cart is left untouched; it is only cleared when the payment completes
// and the order is materialized.
func (s *CheckoutService) StartCheckout(ctx context.Context, sessionID string, opts CheckoutOptions) (*CheckoutSession, error) {
	cart, err := s.carts.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	checkout, err := s.gateway.CreateCheckoutSession(ctx, cart, opts)
	if err != nil {
		logger.Log.Error("Checkout session creation failed",
			zap.String("cart_session_id", sessionID),
			zap.Error(err),
		)
		return nil, ErrPaymentProvider.With(err)
	}

	logger.Log.Info("Checkout session created",
		zap.String("cart_session_id", sessionID),
		zap.String("checkout_session_id", checkout.ID),
		zap.Int64("total_cents", cart.Summary.TotalCents),
	)
	return checkout, nil
}
