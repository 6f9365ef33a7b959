package model

import (
	"database/sql/driver"
	"time"
)

// PaymentStatus represents the lifecycle state of a donation payment.
// Transitions only move forward: pending -> processing -> {completed, failed}.
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusCompleted  PaymentStatus = "completed"
	PaymentStatusFailed     PaymentStatus = "failed"
)

// Scan implements sql.Scanner interface
func (s *PaymentStatus) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*s = PaymentStatus(v)
	case []byte:
		*s = PaymentStatus(v)
	default:
		*s = PaymentStatusPending
	}
	return nil
}

// Value implements driver.Valuer interface
func (s PaymentStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// IsTerminal reports whether no further status transitions are allowed.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusCompleted || s == PaymentStatusFailed
}

// PaymentSource distinguishes donor-initiated records from records the
// reconciler synthesized out of webhook event data.
type PaymentSource string

const (
	PaymentSourceDonor   PaymentSource = "donor"
	PaymentSourceWebhook PaymentSource = "webhook"
)

// Payment is the canonical record of a donation attempt.
type Payment struct {
	ID                    string        `gorm:"primaryKey;size:36" json:"id"`
	AmountCents           int64         `gorm:"not null" json:"amount_cents"`
	Currency              string        `gorm:"size:3;not null;default:'usd'" json:"currency"`
	Status                PaymentStatus `gorm:"type:payment_status;not null;default:'pending';index" json:"status"`
	ProviderSessionID     *string       `gorm:"column:provider_session_id;uniqueIndex;size:100" json:"provider_session_id,omitempty"`
	ProviderIntentID      *string       `gorm:"column:provider_intent_id;uniqueIndex;size:100" json:"provider_intent_id,omitempty"`
	ProviderChargeID      *string       `gorm:"column:provider_charge_id;size:100" json:"provider_charge_id,omitempty"`
	ProviderPaymentMethod *string       `gorm:"column:provider_payment_method_id;size:100" json:"provider_payment_method_id,omitempty"`
	DonorEmail            *string       `gorm:"size:255;index" json:"donor_email,omitempty"`
	DonorName             *string       `gorm:"size:255" json:"donor_name,omitempty"`
	Message               *string       `json:"message,omitempty"`
	RecipientUserID       string        `gorm:"size:36;not null;index" json:"recipient_user_id"`
	FingerprintID         *string       `gorm:"size:36;index" json:"fingerprint_id,omitempty"`
	CampaignID            *string       `gorm:"size:36;index" json:"campaign_id,omitempty"`
	FailureMessage        *string       `json:"failure_message,omitempty"`
	Source                PaymentSource `gorm:"size:20;not null;default:'donor'" json:"source"`
	CreatedAt             time.Time     `gorm:"default:now()" json:"created_at"`
	UpdatedAt             time.Time     `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Payment) TableName() string {
	return "payments"
}
