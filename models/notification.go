package models

import "time"

const (
	NotificationChannelEmail = "email"

	NotificationStatusSent   = "sent"
	NotificationStatusFailed = "failed"
)

// NotificationLog records every dispatch attempt outcome for auditing.
// A failed row never affects the order that triggered it.
type NotificationLog struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   string    `gorm:"size:64;index" json:"order_id"`
	Recipient string    `gorm:"size:255" json:"recipient"`
	Type      string    `gorm:"size:64" json:"type"`
	Channel   string    `gorm:"size:16" json:"channel"`
	Status    string    `gorm:"size:16" json:"status"`
	Error     string    `gorm:"size:1024" json:"error,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
