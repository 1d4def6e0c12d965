package notifier

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/quickbasket/storefront/logger"
	"github.com/quickbasket/storefront/models"
	aws_pkg "github.com/quickbasket/storefront/pkg/aws"
)

// SQSConsumer feeds order events from the notification queue into the
// notifier. The queue is subscribed to the order events SNS topic, so each
// message body is an SNS envelope wrapping the event JSON.
type SQSConsumer struct {
	queue    *aws_pkg.SQSConsumer
	notifier *Notifier
}

func NewSQSConsumer(queue *aws_pkg.SQSConsumer, notifier *Notifier) *SQSConsumer {
	return &SQSConsumer{queue: queue, notifier: notifier}
}

// snsEnvelope unwraps the SNS → SQS message wrapper.
type snsEnvelope struct {
	Message string `json:"Message"`
}

// Start consumes until the context is cancelled. Malformed or unsupported
// payloads are dropped after logging so they cannot loop forever; send
// failures are already absorbed inside the notifier.
func (c *SQSConsumer) Start(ctx context.Context) error {
	return c.queue.StartPolling(ctx, func(ctx context.Context, body string) error {
		var envelope snsEnvelope
		if err := json.Unmarshal([]byte(body), &envelope); err != nil {
			logger.Log.Error("Dropping unparseable queue message", zap.Error(err))
			return nil
		}
		payload := envelope.Message
		if payload == "" {
			// Raw delivery without the SNS wrapper
			payload = body
		}

		var event models.OrderCreatedEvent
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			logger.Log.Error("Dropping unparseable order event", zap.Error(err))
			return nil
		}

		if err := c.notifier.ProcessEvent(ctx, &event); err != nil {
			logger.Log.Error("Dropping unprocessable order event",
				zap.String("order_id", event.OrderID),
				zap.Error(err))
		}
		return nil
	})
}
