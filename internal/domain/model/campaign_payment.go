package model

import "time"

// CampaignPayment links a payment to the fundraising campaign it was
// earmarked for. The (campaign_id, payment_id) pair is unique; inserting an
// existing pair is a silent no-op at the repository layer.
type CampaignPayment struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CampaignID string    `gorm:"size:36;not null;uniqueIndex:idx_campaign_payment_pair;index" json:"campaign_id"`
	PaymentID  string    `gorm:"size:36;not null;uniqueIndex:idx_campaign_payment_pair" json:"payment_id"`
	CreatedAt  time.Time `gorm:"default:now()" json:"created_at"`
}

// TableName specifies the table name for GORM
func (CampaignPayment) TableName() string {
	return "campaign_payments"
}
