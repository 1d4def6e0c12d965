package controllers_test

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/webhook"
	"go.uber.org/zap"

	"github.com/quickbasket/storefront/controllers"
	"github.com/quickbasket/storefront/logger"
	"github.com/quickbasket/storefront/models"
	"github.com/quickbasket/storefront/services"
)

const webhookSecret = "whsec_test_secret"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.Log = zap.NewNop()
	m.Run()
}

type fakeMaterializer struct {
	completed []string
	succeeded []string
	failed    []string
	err       error
}

func (f *fakeMaterializer) HandleCheckoutCompleted(_ context.Context, sess *stripe.CheckoutSession) (*models.Order, error) {
	f.completed = append(f.completed, sess.ID)
	if f.err != nil {
		return nil, f.err
	}
	return &models.Order{StripeSessionID: sess.ID}, nil
}

func (f *fakeMaterializer) HandlePaymentSucceeded(_ context.Context, intent *stripe.PaymentIntent) error {
	f.succeeded = append(f.succeeded, intent.ID)
	return f.err
}

func (f *fakeMaterializer) HandlePaymentFailed(_ context.Context, intent *stripe.PaymentIntent) error {
	f.failed = append(f.failed, intent.ID)
	return f.err
}

func webhookRouter(m *fakeMaterializer) *gin.Engine {
	verifier := services.NewStripeService("sk_test_123", webhookSecret, "http://localhost")
	r := gin.New()
	r.POST("/stripe/webhook", controllers.NewWebhookController(verifier, m).StripeWebhook)
	return r
}

func signedRequest(t *testing.T, payload string) *http.Request {
	t.Helper()
	now := time.Now()
	sig := webhook.ComputeSignature(now, []byte(payload), webhookSecret)
	req := httptest.NewRequest(http.MethodPost, "/stripe/webhook", bytes.NewBufferString(payload))
	req.Header.Set("Stripe-Signature", fmt.Sprintf("t=%d,v1=%x", now.Unix(), sig))
	return req
}

func checkoutCompletedPayload(sessionID string) string {
	return fmt.Sprintf(`{
		"id": "evt_1",
		"api_version": %q,
		"type": "checkout.session.completed",
		"data": {"object": {"id": %q, "metadata": {"cart_session_id": "sess-1"}}}
	}`, stripe.APIVersion, sessionID)
}

func TestStripeWebhook_ValidSignatureDispatches(t *testing.T) {
	m := &fakeMaterializer{}
	w := httptest.NewRecorder()

	webhookRouter(m).ServeHTTP(w, signedRequest(t, checkoutCompletedPayload("cs_1")))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"cs_1"}, m.completed)
}

func TestStripeWebhook_TamperedPayloadRejected(t *testing.T) {
	m := &fakeMaterializer{}
	req := signedRequest(t, checkoutCompletedPayload("cs_1"))
	// Re-point the body at a different payload than the one signed.
	req.Body = httptest.NewRequest(http.MethodPost, "/stripe/webhook",
		bytes.NewBufferString(checkoutCompletedPayload("cs_evil"))).Body

	w := httptest.NewRecorder()
	webhookRouter(m).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, m.completed, "an unverified event must never reach the materializer")
}

func TestStripeWebhook_MissingSignatureRejected(t *testing.T) {
	m := &fakeMaterializer{}
	req := httptest.NewRequest(http.MethodPost, "/stripe/webhook",
		bytes.NewBufferString(checkoutCompletedPayload("cs_1")))

	w := httptest.NewRecorder()
	webhookRouter(m).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, m.completed)
}

func TestStripeWebhook_StaleTimestampRejected(t *testing.T) {
	m := &fakeMaterializer{}
	payload := checkoutCompletedPayload("cs_1")
	old := time.Now().Add(-time.Hour)
	sig := webhook.ComputeSignature(old, []byte(payload), webhookSecret)
	req := httptest.NewRequest(http.MethodPost, "/stripe/webhook", bytes.NewBufferString(payload))
	req.Header.Set("Stripe-Signature", fmt.Sprintf("t=%d,v1=%x", old.Unix(), sig))

	w := httptest.NewRecorder()
	webhookRouter(m).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, m.completed)
}

func TestStripeWebhook_MaterializerErrorReturnsItsStatus(t *testing.T) {
	m := &fakeMaterializer{err: services.ErrCartUnavailable}
	w := httptest.NewRecorder()

	webhookRouter(m).ServeHTTP(w, signedRequest(t, checkoutCompletedPayload("cs_1")))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestStripeWebhook_PaymentIntentEventsRouted(t *testing.T) {
	m := &fakeMaterializer{}
	router := webhookRouter(m)

	payload := fmt.Sprintf(`{"id":"evt_2","api_version":%q,"type":"payment_intent.succeeded","data":{"object":{"id":"pi_1"}}}`, stripe.APIVersion)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, signedRequest(t, payload))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"pi_1"}, m.succeeded)

	payload = fmt.Sprintf(`{"id":"evt_3","api_version":%q,"type":"payment_intent.payment_failed","data":{"object":{"id":"pi_2"}}}`, stripe.APIVersion)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, signedRequest(t, payload))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"pi_2"}, m.failed)
}

func TestStripeWebhook_UnhandledEventAcknowledged(t *testing.T) {
	m := &fakeMaterializer{}
	payload := fmt.Sprintf(`{"id":"evt_4","api_version":%q,"type":"charge.refunded","data":{"object":{}}}`, stripe.APIVersion)
	w := httptest.NewRecorder()

	webhookRouter(m).ServeHTTP(w, signedRequest(t, payload))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, m.completed)
	assert.Empty(t, m.succeeded)
	assert.Empty(t, m.failed)
}
