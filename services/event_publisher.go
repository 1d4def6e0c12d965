package services

import (
	"context"
	"encoding/json"

	"github.com/quickbasket/storefront/models"
	aws_pkg "github.com/quickbasket/storefront/pkg/aws"
)

// SNSEventPublisher publishes order events to an SNS topic. The notifier
// consumes them via an SQS subscription.
type SNSEventPublisher struct {
	sns      aws_pkg.SNSPublisher
	topicARN string
}

func NewSNSEventPublisher(sns aws_pkg.SNSPublisher, topicARN string) *SNSEventPublisher {
	return &SNSEventPublisher{sns: sns, topicARN: topicARN}
}

func (p *SNSEventPublisher) PublishOrderCreated(ctx context.Context, event models.OrderCreatedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.sns.Publish(ctx, p.topicARN, models.EventOrderCreated, data)
}
