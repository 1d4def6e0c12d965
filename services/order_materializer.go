package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"

	"github.com/quickbasket/storefront/logger"
	"github.com/quickbasket/storefront/models"
	"github.com/quickbasket/storefront/repository"
)

// EventPublisher publishes domain events for downstream consumers.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, event models.OrderCreatedEvent) error
}

// OrderMaterializer turns verified payment webhooks into persisted orders.
// Materialization is idempotent on the payment session id: the same webhook
// delivered twice yields one order.
type OrderMaterializer struct {
	orders       repository.OrderRepository
	pricing      PricingPolicy
	publisher    EventPublisher
	deliveryDays int
}

func NewOrderMaterializer(orders repository.OrderRepository, pricing PricingPolicy, publisher EventPublisher, deliveryDays int) *OrderMaterializer {
	return &OrderMaterializer{
		orders:       orders,
		pricing:      pricing,
		publisher:    publisher,
		deliveryDays: deliveryDays,
	}
}

// HandleCheckoutCompleted materializes an order from a completed checkout
// session. The cart snapshot, order insert, and cart clear run in one
// transaction; a failure leaves the cart intact so the provider's retry can
// succeed later.
func (m *OrderMaterializer) HandleCheckoutCompleted(ctx context.Context, sess *stripe.CheckoutSession) (*models.Order, error) {
	cartSessionID := sess.Metadata["cart_session_id"]
	if cartSessionID == "" {
		logger.Log.Error("Checkout session missing cart correlation",
			zap.String("stripe_session_id", sess.ID))
		return nil, ErrMissingCorrelation
	}

	// Fast path: the order already exists, acknowledge the redelivery.
	if existing, err := m.orders.FindByStripeSessionID(ctx, sess.ID); err == nil {
		logger.Log.Info("Duplicate checkout webhook, order already materialized",
			zap.String("stripe_session_id", sess.ID),
			zap.String("order_id", existing.ID.String()))
		return existing, nil
	} else if !errors.Is(err, repository.ErrOrderNotFound) {
		return nil, err
	}

	order, err := m.orders.CreateFromCart(ctx, cartSessionID, func(items []models.CartItem) (*models.Order, error) {
		return m.buildOrder(sess, cartSessionID, items)
	})
	if err != nil {
		// A concurrent delivery won the insert race; return its order.
		if errors.Is(err, repository.ErrDuplicateOrder) {
			return m.orders.FindByStripeSessionID(ctx, sess.ID)
		}
		if errors.Is(err, repository.ErrEmptyCart) {
			logger.Log.Error("Cart gone at materialization time",
				zap.String("stripe_session_id", sess.ID),
				zap.String("cart_session_id", cartSessionID))
			return nil, ErrCartUnavailable
		}
		return nil, err
	}

	logger.Log.Info("Order materialized",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("stripe_session_id", sess.ID),
		zap.Int64("total_cents", order.TotalCents),
	)

	m.publishOrderCreated(ctx, order)
	return order, nil
}

// resolveByIntent looks an order up by payment intent id, falling back to the
// cart session carried in the intent metadata. Checkout sessions can complete
// before Stripe assigns the intent, so an order may exist without the intent
// id; the fallback adopts it and persists the correlation.
func (m *OrderMaterializer) resolveByIntent(ctx context.Context, intent *stripe.PaymentIntent) (*models.Order, error) {
	order, err := m.orders.FindByPaymentIntentID(ctx, intent.ID)
	if err == nil {
		return order, nil
	}
	if !errors.Is(err, repository.ErrOrderNotFound) {
		return nil, err
	}

	cartSessionID := intent.Metadata["cart_session_id"]
	if cartSessionID == "" {
		return nil, repository.ErrOrderNotFound
	}
	order, err = m.orders.FindByCartSessionID(ctx, cartSessionID)
	if err != nil {
		return nil, err
	}
	if order.StripePaymentIntentID != "" && order.StripePaymentIntentID != intent.ID {
		// The session's latest order belongs to a different payment.
		return nil, repository.ErrOrderNotFound
	}

	if order.StripePaymentIntentID == "" {
		if err := m.orders.SetPaymentIntentID(ctx, order.ID.String(), intent.ID); err != nil {
			return nil, err
		}
		order.StripePaymentIntentID = intent.ID
		logger.Log.Info("Adopted payment intent via cart session fallback",
			zap.String("order_id", order.ID.String()),
			zap.String("payment_intent_id", intent.ID))
	}
	return order, nil
}

// HandlePaymentSucceeded confirms the payment on an existing order. Arrival
// order of provider events is not guaranteed, so a missing order is an error;
// the provider redelivers after the checkout event has landed.
func (m *OrderMaterializer) HandlePaymentSucceeded(ctx context.Context, intent *stripe.PaymentIntent) error {
	order, err := m.resolveByIntent(ctx, intent)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return fmt.Errorf("no order for payment intent %s yet", intent.ID)
		}
		return err
	}

	logger.Log.Info("Payment confirmed",
		zap.String("order_id", order.ID.String()),
		zap.String("payment_intent_id", intent.ID))
	return nil
}

// HandlePaymentFailed cancels the order for a failed payment. Orders in a
// terminal state are left alone.
func (m *OrderMaterializer) HandlePaymentFailed(ctx context.Context, intent *stripe.PaymentIntent) error {
	order, err := m.resolveByIntent(ctx, intent)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			// Nothing was materialized for this payment; nothing to cancel.
			return nil
		}
		return err
	}

	if order.Status != models.OrderStatusProcessing {
		logger.Log.Warn("Ignoring payment failure for settled order",
			zap.String("order_id", order.ID.String()),
			zap.String("status", order.Status))
		return nil
	}

	if err := m.orders.UpdateStatus(ctx, order.ID.String(), models.OrderStatusCancelled); err != nil {
		return err
	}
	logger.Log.Info("Order cancelled after payment failure",
		zap.String("order_id", order.ID.String()),
		zap.String("payment_intent_id", intent.ID))
	return nil
}

func (m *OrderMaterializer) buildOrder(sess *stripe.CheckoutSession, cartSessionID string, items []models.CartItem) (*models.Order, error) {
	var discount int64
	if sess.TotalDetails != nil {
		discount = sess.TotalDetails.AmountDiscount
	}
	summary := m.pricing.ComputeSummary(items, discount)

	order := &models.Order{
		OrderNumber:     generateOrderNumber(),
		CartSessionID:   cartSessionID,
		StripeSessionID: sess.ID,
		Status:          models.OrderStatusProcessing,
		SubtotalCents:   summary.SubtotalCents,
		ShippingCents:   summary.ShippingCents,
		TaxCents:        summary.TaxCents,
		DiscountCents:   summary.DiscountCents,
		TotalCents:      summary.TotalCents,
		Currency:        summary.Currency,
	}
	if m.deliveryDays > 0 {
		eta := time.Now().UTC().AddDate(0, 0, m.deliveryDays)
		order.EstimatedDelivery = &eta
	}
	if sess.PaymentIntent != nil {
		order.StripePaymentIntentID = sess.PaymentIntent.ID
	}
	if details := sess.CustomerDetails; details != nil {
		order.CustomerName = details.Name
		order.CustomerEmail = details.Email
		if details.Address != nil {
			addr := models.Address{
				Line1:      details.Address.Line1,
				Line2:      details.Address.Line2,
				City:       details.Address.City,
				State:      details.Address.State,
				PostalCode: details.Address.PostalCode,
				Country:    details.Address.Country,
			}
			order.ShippingAddress = addr
			order.BillingAddress = addr
		}
	}

	order.OrderItems = make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		order.OrderItems = append(order.OrderItems, models.OrderItem{
			ProductID:       item.ProductID,
			VariantID:       item.VariantID,
			ProductName:     item.ProductName,
			Quantity:        item.Quantity,
			UnitPriceCents:  item.UnitPriceCents,
			TotalPriceCents: item.TotalPriceCents,
		})
	}
	return order, nil
}

// publishOrderCreated is best effort: the order is already committed, so a
// publish failure is logged and swallowed rather than failing the webhook.
func (m *OrderMaterializer) publishOrderCreated(ctx context.Context, order *models.Order) {
	if m.publisher == nil {
		return
	}

	event := models.OrderCreatedEvent{
		Event:             models.EventOrderCreated,
		OrderID:           order.ID.String(),
		OrderNumber:       order.OrderNumber,
		CustomerName:      order.CustomerName,
		CustomerEmail:     order.CustomerEmail,
		SubtotalCents:     order.SubtotalCents,
		ShippingCents:     order.ShippingCents,
		TaxCents:          order.TaxCents,
		DiscountCents:     order.DiscountCents,
		TotalCents:        order.TotalCents,
		Currency:          order.Currency,
		ShippingAddr:      order.ShippingAddress,
		EstimatedDelivery: order.EstimatedDelivery,
		Timestamp:         time.Now().UTC(),
	}
	for _, item := range order.OrderItems {
		event.Items = append(event.Items, models.OrderEventItem{
			ProductName:     item.ProductName,
			Quantity:        item.Quantity,
			UnitPriceCents:  item.UnitPriceCents,
			TotalPriceCents: item.TotalPriceCents,
		})
	}

	if err := m.publisher.PublishOrderCreated(ctx, event); err != nil {
		logger.Log.Error("Failed to publish order_created event",
			zap.String("order_id", event.OrderID),
			zap.Error(err))
	}
}

func generateOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", time.Now().UTC().Format("20060102"), suffix)
}
