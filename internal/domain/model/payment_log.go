package model

import "time"

// Payment log status labels written by the reconcilers. These are diagnostic
// breadcrumbs for operators, never control flow.
const (
	LogPaymentCreated   = "payment_created"
	LogPaymentUpdated   = "payment_updated"
	LogPaymentCompleted = "payment_completed"
	LogPaymentFailed    = "payment_failed"
	LogPaymentNotFound  = "payment_not_found"
	LogLookupMiss       = "lookup_miss"
	LogEmailFallback    = "email_fallback_match"
	LogStatusConflict   = "status_conflict"
	LogSynthesisFailed  = "synthesis_failed"
	LogCampaignLinked   = "campaign_linked"
)

// PaymentLog is an append-only diagnostic entry. PaymentID is nullable because
// some entries are written before a record has been resolved.
type PaymentLog struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	PaymentID *string   `gorm:"size:36;index" json:"payment_id,omitempty"`
	Status    string    `gorm:"not null;size:50;index" json:"status"`
	Message   string    `gorm:"not null" json:"message"`
	Metadata  JSONB     `gorm:"type:jsonb;default:'{}'" json:"metadata"`
	CreatedAt time.Time `gorm:"default:now();index" json:"created_at"`
}

// TableName specifies the table name for GORM
func (PaymentLog) TableName() string {
	return "payment_logs"
}
