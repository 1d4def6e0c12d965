package notifier_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/quickbasket/storefront/logger"
	"github.com/quickbasket/storefront/models"
	"github.com/quickbasket/storefront/notifier"
	"github.com/quickbasket/storefront/notifier/sender"
)

const templatePath = "../templates/order_confirmation.html"

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	m.Run()
}

type fakeSender struct {
	calls    int
	failures int
	lastTo   string
	lastBody string
}

func (f *fakeSender) SendEmail(_ context.Context, to, _, body string) (sender.SendResult, error) {
	f.calls++
	f.lastTo = to
	f.lastBody = body
	if f.calls <= f.failures {
		return sender.SendResult{}, errors.New("smtp: connection refused")
	}
	return sender.SendResult{MessageID: "msg-1", SentAt: time.Now()}, nil
}

type fakeNotificationRepo struct {
	logs []models.NotificationLog
	err  error
}

func (f *fakeNotificationRepo) SaveLog(_ context.Context, log *models.NotificationLog) error {
	f.logs = append(f.logs, *log)
	return f.err
}

func orderEvent() *models.OrderCreatedEvent {
	eta := time.Date(2026, time.September, 6, 0, 0, 0, 0, time.UTC)
	return &models.OrderCreatedEvent{
		Event:         models.EventOrderCreated,
		OrderID:       "ord-1",
		OrderNumber:   "ORD-20250901-ABCD1234",
		CustomerName:  "Dana Shopper",
		CustomerEmail: "dana@example.test",
		Items: []models.OrderEventItem{
			{ProductName: "Enamel Mug", Quantity: 2, UnitPriceCents: 1500, TotalPriceCents: 3000},
		},
		SubtotalCents:     3000,
		ShippingCents:     700,
		TaxCents:          350,
		TotalCents:        4050,
		Currency:          "usd",
		EstimatedDelivery: &eta,
		Timestamp:         time.Now(),
	}
}

func TestProcessEvent_SendsAndLogs(t *testing.T) {
	repo := &fakeNotificationRepo{}
	mail := &fakeSender{}
	n, err := notifier.New(repo, mail, templatePath)
	assert.NoError(t, err)

	err = n.ProcessEvent(context.Background(), orderEvent())
	assert.NoError(t, err)

	assert.Equal(t, 1, mail.calls)
	assert.Equal(t, "dana@example.test", mail.lastTo)
	assert.Contains(t, mail.lastBody, "ORD-20250901-ABCD1234")
	assert.Contains(t, mail.lastBody, "Enamel Mug")
	assert.Contains(t, mail.lastBody, "$30.00")
	assert.Contains(t, mail.lastBody, "$40.50")
	assert.Contains(t, mail.lastBody, "Sunday, September 6, 2026")

	assert.Len(t, repo.logs, 1)
	assert.Equal(t, models.NotificationStatusSent, repo.logs[0].Status)
	assert.Equal(t, "ord-1", repo.logs[0].OrderID)
}

func TestProcessEvent_RetriesThenSucceeds(t *testing.T) {
	repo := &fakeNotificationRepo{}
	mail := &fakeSender{failures: 2}
	n, err := notifier.New(repo, mail, templatePath)
	assert.NoError(t, err)

	err = n.ProcessEvent(context.Background(), orderEvent())
	assert.NoError(t, err)

	assert.Equal(t, 3, mail.calls)
	assert.Equal(t, models.NotificationStatusSent, repo.logs[0].Status)
}

func TestProcessEvent_ExhaustedRetriesRecordedNotReturned(t *testing.T) {
	repo := &fakeNotificationRepo{}
	mail := &fakeSender{failures: 10}
	n, err := notifier.New(repo, mail, templatePath)
	assert.NoError(t, err)

	err = n.ProcessEvent(context.Background(), orderEvent())
	assert.NoError(t, err, "delivery failure must not propagate")

	assert.Equal(t, 3, mail.calls, "retry budget is three attempts")
	assert.Len(t, repo.logs, 1)
	assert.Equal(t, models.NotificationStatusFailed, repo.logs[0].Status)
	assert.Contains(t, repo.logs[0].Error, "connection refused")
}

func TestProcessEvent_MissingRecipientSkipped(t *testing.T) {
	repo := &fakeNotificationRepo{}
	mail := &fakeSender{}
	n, err := notifier.New(repo, mail, templatePath)
	assert.NoError(t, err)

	event := orderEvent()
	event.CustomerEmail = ""
	err = n.ProcessEvent(context.Background(), event)
	assert.NoError(t, err)
	assert.Zero(t, mail.calls)
}

func TestProcessEvent_UnsupportedEventType(t *testing.T) {
	repo := &fakeNotificationRepo{}
	mail := &fakeSender{}
	n, err := notifier.New(repo, mail, templatePath)
	assert.NoError(t, err)

	event := orderEvent()
	event.Event = "order_refunded"
	err = n.ProcessEvent(context.Background(), event)
	assert.Error(t, err)
	assert.Zero(t, mail.calls)
}
