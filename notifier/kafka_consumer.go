package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/quickbasket/storefront/logger"
	"github.com/quickbasket/storefront/models"
)

// KafkaConsumer reads order events from the order events topic when the
// deployment runs on Kafka instead of SNS/SQS.
type KafkaConsumer struct {
	reader   *kafka.Reader
	notifier *Notifier
}

func NewKafkaConsumer(brokers, topic string, notifier *Notifier) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  strings.Split(brokers, ","),
		Topic:    topic,
		GroupID:  "storefront-notifier",
		MinBytes: 1e3,
		MaxBytes: 1e6,
	})
	return &KafkaConsumer{reader: reader, notifier: notifier}
}

// Start consumes until the context is cancelled.
func (c *KafkaConsumer) Start(ctx context.Context) error {
	defer c.reader.Close()

	logger.Log.Info("Kafka consumer started", zap.String("topic", c.reader.Config().Topic))

	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				logger.Log.Info("Kafka consumer shutting down")
				return nil
			}
			return err
		}

		var event models.OrderCreatedEvent
		if err := json.Unmarshal(m.Value, &event); err != nil {
			logger.Log.Error("Dropping unparseable order event", zap.Error(err))
			continue
		}

		if err := c.notifier.ProcessEvent(ctx, &event); err != nil {
			logger.Log.Error("Dropping unprocessable order event",
				zap.String("order_id", event.OrderID),
				zap.Error(err))
		}
	}
}
