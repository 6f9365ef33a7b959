package model

import (
	"database/sql/driver"
	"time"
)

// WebhookStatus represents the processing status of a webhook event
type WebhookStatus string

const (
	WebhookStatusReceived  WebhookStatus = "received"
	WebhookStatusProcessed WebhookStatus = "processed"
	WebhookStatusFailed    WebhookStatus = "failed"
)

// Scan implements sql.Scanner interface
func (w *WebhookStatus) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*w = WebhookStatus(v)
	case []byte:
		*w = WebhookStatus(v)
	default:
		*w = WebhookStatusReceived
	}
	return nil
}

// Value implements driver.Valuer interface
func (w WebhookStatus) Value() (driver.Value, error) {
	return string(w), nil
}

// WebhookEvent is the immutable record of one inbound provider delivery.
// Only Status, PaymentID and ProcessedAt are ever updated after insert.
type WebhookEvent struct {
	ID                int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	ProviderEventID   string        `gorm:"column:provider_event_id;unique;not null;size:255;index" json:"provider_event_id"`
	EventType         string        `gorm:"not null;size:100;index" json:"event_type"`
	PaymentID         *string       `gorm:"size:36;index" json:"payment_id,omitempty"`
	Status            WebhookStatus `gorm:"type:webhook_status;default:'received';index" json:"status"`
	IsTestMode        bool          `gorm:"not null;default:false" json:"is_test_mode"`
	RawPayload        JSONB         `gorm:"type:jsonb;not null" json:"raw_payload"`
	LastError         *string       `json:"last_error,omitempty"`
	ReceivedAt        time.Time     `gorm:"default:now()" json:"received_at"`
	ProcessedAt       *time.Time    `json:"processed_at,omitempty"`
	ProviderCreatedAt *time.Time    `json:"provider_created_at,omitempty"`
}

// TableName specifies the table name for GORM
func (WebhookEvent) TableName() string {
	return "webhook_events"
}
