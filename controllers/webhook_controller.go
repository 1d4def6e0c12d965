package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"

	"github.com/quickbasket/storefront/logger"
	"github.com/quickbasket/storefront/models"
)

// WebhookVerifier validates a raw webhook payload against its signature.
type WebhookVerifier interface {
	VerifyEvent(payload []byte, sigHeader string) (stripe.Event, error)
}

// OrderMaterializer is the slice of the order service the webhook needs.
type OrderMaterializer interface {
	HandleCheckoutCompleted(ctx context.Context, sess *stripe.CheckoutSession) (*models.Order, error)
	HandlePaymentSucceeded(ctx context.Context, intent *stripe.PaymentIntent) error
	HandlePaymentFailed(ctx context.Context, intent *stripe.PaymentIntent) error
}

type WebhookController struct {
	verifier     WebhookVerifier
	materializer OrderMaterializer
}

func NewWebhookController(verifier WebhookVerifier, materializer OrderMaterializer) *WebhookController {
	return &WebhookController{verifier: verifier, materializer: materializer}
}

// StripeWebhook receives signed Stripe events. Unverifiable payloads are
// rejected before any processing. Handler failures return a 5xx/4xx so the
// provider retries; success and duplicates both acknowledge with 200.
func (wc *WebhookController) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, 1<<20))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable payload"})
		return
	}

	event, err := wc.verifier.VerifyEvent(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		logger.Log.Warn("Stripe webhook signature verification failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		return
	}

	logger.Log.Info("Processing Stripe webhook",
		zap.String("event_type", string(event.Type)),
		zap.String("event_id", event.ID),
	)

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			logger.Log.Error("Failed to unmarshal checkout session", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed event"})
			return
		}
		if _, err := wc.materializer.HandleCheckoutCompleted(c, &sess); err != nil {
			respondError(c, err)
			return
		}

	case "payment_intent.succeeded", "payment_intent.payment_failed":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			logger.Log.Error("Failed to unmarshal payment intent", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed event"})
			return
		}
		var herr error
		if event.Type == "payment_intent.succeeded" {
			herr = wc.materializer.HandlePaymentSucceeded(c, &intent)
		} else {
			herr = wc.materializer.HandlePaymentFailed(c, &intent)
		}
		if herr != nil {
			respondError(c, herr)
			return
		}

	default:
		logger.Log.Info("Unhandled webhook event type", zap.String("event_type", string(event.Type)))
	}

	c.JSON(http.StatusOK, gin.H{"status": "received"})
}
