package notifier

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/quickbasket/storefront/logger"
	"github.com/quickbasket/storefront/models"
	"github.com/quickbasket/storefront/notifier/sender"
	"github.com/quickbasket/storefront/repository"
)

const confirmationSubject = "Order Confirmed!"

// Notifier renders and dispatches order confirmation emails. Delivery is best
// effort: every attempt's outcome is recorded, and a failure is never
// surfaced to the flow that created the order.
type Notifier struct {
	repo  repository.NotificationRepository
	email sender.EmailSender
	tmpl  *template.Template
}

func New(repo repository.NotificationRepository, email sender.EmailSender, templatePath string) (*Notifier, error) {
	tmpl, err := template.New("order_confirmation.html").
		Funcs(template.FuncMap{"money": formatMoney}).
		ParseFiles(templatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse confirmation template: %w", err)
	}
	return &Notifier{repo: repo, email: email, tmpl: tmpl}, nil
}

// ProcessEvent handles one order_created event. A missing recipient or an
// exhausted retry budget is logged and recorded, not returned: the message
// should not be redelivered for a problem retries cannot fix.
func (n *Notifier) ProcessEvent(ctx context.Context, event *models.OrderCreatedEvent) error {
	if event.Event != models.EventOrderCreated {
		return fmt.Errorf("unsupported event type: %s", event.Event)
	}
	if event.CustomerEmail == "" {
		logger.Log.Warn("Order event has no recipient, skipping",
			zap.String("order_id", event.OrderID))
		return nil
	}

	var buf bytes.Buffer
	if err := n.tmpl.Execute(&buf, event); err != nil {
		return fmt.Errorf("template render failed: %w", err)
	}

	n.sendWithRetry(ctx, event, buf.String())
	return nil
}

func (n *Notifier) sendWithRetry(ctx context.Context, event *models.OrderCreatedEvent, body string) {
	var lastErr error

	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * time.Second)
		}

		_, lastErr = n.email.SendEmail(ctx, event.CustomerEmail, confirmationSubject, body)
		if lastErr == nil {
			break
		}

		logger.Log.Warn("Send attempt failed",
			zap.String("order_id", event.OrderID),
			zap.Int("attempt", attempt+1),
			zap.Error(lastErr),
		)
	}

	entry := &models.NotificationLog{
		OrderID:   event.OrderID,
		Recipient: event.CustomerEmail,
		Type:      models.EventOrderCreated,
		Channel:   models.NotificationChannelEmail,
		Status:    models.NotificationStatusSent,
	}
	if lastErr != nil {
		entry.Status = models.NotificationStatusFailed
		entry.Error = lastErr.Error()
		logger.Log.Error("Confirmation email failed after retries",
			zap.String("order_id", event.OrderID),
			zap.Error(lastErr))
	} else {
		logger.Log.Info("Confirmation email sent",
			zap.String("order_id", event.OrderID),
			zap.String("recipient", event.CustomerEmail))
	}

	if err := n.repo.SaveLog(ctx, entry); err != nil {
		logger.Log.Error("Failed to save notification log", zap.Error(err))
	}
}

// formatMoney renders integer minor units as a display amount, e.g.
// money 1999 "usd" → "$19.99".
func formatMoney(cents int64, currency string) string {
	symbol := ""
	switch strings.ToLower(currency) {
	case "usd":
		symbol = "$"
	case "eur":
		symbol = "€"
	case "gbp":
		symbol = "£"
	default:
		symbol = strings.ToUpper(currency) + " "
	}
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%s%d.%02d", sign, symbol, cents/100, cents%100)
}
