package services

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/checkout/session"
	"github.com/stripe/stripe-go/v80/webhook"

	"github.com/quickbasket/storefront/models"
)

// CheckoutSession is the hosted payment session handed back to the client.
type CheckoutSession struct {
	ID  string `json:"checkout_session_id"`
	URL string `json:"checkout_url"`
}

// StripeService wraps the Stripe API for checkout session creation and
// webhook verification.
type StripeService struct {
	SecretKey  string
	WebhookKey string
	BaseURL    string
}

func NewStripeService(secretKey, webhookKey, baseURL string) *StripeService {
	stripe.Key = secretKey
	return &StripeService{SecretKey: secretKey, WebhookKey: webhookKey, BaseURL: baseURL}
}

// CreateCheckoutSession opens a hosted Stripe Checkout session priced from
// the cart. The cart session id travels in the session metadata; it is the
// only correlation back to the cart when the webhook lands.
func (s *StripeService) CreateCheckoutSession(ctx context.Context, cart *models.Cart, opts CheckoutOptions) (*CheckoutSession, error) {
	currency := cart.Summary.Currency

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(cart.Items)+2)
	for _, item := range cart.Items {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.ProductName),
				},
				UnitAmount: stripe.Int64(item.UnitPriceCents),
			},
			Quantity: stripe.Int64(int64(item.Quantity)),
		})
	}
	if cart.Summary.ShippingCents > 0 {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String("Shipping"),
				},
				UnitAmount: stripe.Int64(cart.Summary.ShippingCents),
			},
			Quantity: stripe.Int64(1),
		})
	}
	if cart.Summary.TaxCents > 0 {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String("Sales Tax"),
				},
				UnitAmount: stripe.Int64(cart.Summary.TaxCents),
			},
			Quantity: stripe.Int64(1),
		})
	}

	successURL := opts.SuccessURL
	if successURL == "" {
		successURL = fmt.Sprintf("%s/checkout/success?session_id={CHECKOUT_SESSION_ID}", s.BaseURL)
	}
	cancelURL := opts.CancelURL
	if cancelURL == "" {
		cancelURL = fmt.Sprintf("%s/checkout/cancel", s.BaseURL)
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:  lineItems,
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
		// The payment intent gets the same correlation key: payment_intent.*
		// events don't reference the checkout session, so the metadata is the
		// only way back to the cart when those arrive first.
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: map[string]string{"cart_session_id": cart.SessionID},
		},
	}
	if opts.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(opts.CustomerEmail)
	}
	params.Context = ctx
	params.AddMetadata("cart_session_id", cart.SessionID)

	sess, err := session.New(params)
	if err != nil {
		return nil, err
	}
	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

// VerifyEvent checks the webhook signature against the endpoint secret and
// returns the parsed event. The raw body must be used, not a re-serialized
// one.
func (s *StripeService) VerifyEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, sigHeader, s.WebhookKey)
}
