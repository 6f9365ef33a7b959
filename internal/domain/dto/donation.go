package dto

import "time"

// CreateDonationRequest is the payload for starting a new donation checkout.
type CreateDonationRequest struct {
	RecipientUserID string `json:"recipient_user_id" validate:"required,uuid4"`
	AmountCents     int64  `json:"amount_cents" validate:"required,gt=0"`
	Currency        string `json:"currency" validate:"omitempty,iso4217"`
	DonorEmail      string `json:"donor_email" validate:"omitempty,email"`
	DonorName       string `json:"donor_name" validate:"omitempty,max=255"`
	Message         string `json:"message" validate:"omitempty,max=2000"`
	CampaignID      string `json:"campaign_id" validate:"omitempty,uuid4"`
	FingerprintID   string `json:"fingerprint_id" validate:"omitempty,uuid4"`
}

// CreateDonationResponse returns the new payment record and the hosted
// checkout URL the donor should be redirected to.
type CreateDonationResponse struct {
	PaymentID   string `json:"payment_id"`
	Status      string `json:"status"`
	CheckoutURL string `json:"checkout_url"`
	SessionID   string `json:"session_id"`
}

// DonationStatusResponse is the polling view of a payment record.
type DonationStatusResponse struct {
	PaymentID      string  `json:"payment_id"`
	Status         string  `json:"status"`
	AmountCents    int64   `json:"amount_cents"`
	Currency       string  `json:"currency"`
	CampaignID     *string `json:"campaign_id,omitempty"`
	FailureMessage *string `json:"failure_message,omitempty"`
}

// PaymentListItem is one entry in a recipient's payment history.
type PaymentListItem struct {
	PaymentID   string    `json:"payment_id"`
	Status      string    `json:"status"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	DonorName   *string   `json:"donor_name,omitempty"`
	Message     *string   `json:"message,omitempty"`
	CampaignID  *string   `json:"campaign_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// PaymentListResponse wraps a page of payments.
type PaymentListResponse struct {
	Payments []PaymentListItem `json:"payments"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
}

// CampaignFeedResponse is the public view of completed donations for a
// campaign. Donor emails are never exposed here.
type CampaignFeedResponse struct {
	CampaignID string            `json:"campaign_id"`
	TotalCount int64             `json:"total_count"`
	Payments   []PaymentListItem `json:"payments"`
}

// AllocationItem is one weighted slice of a giving fingerprint.
type AllocationItem struct {
	Category string `json:"category"`
	TargetID string `json:"target_id"`
	Label    string `json:"label"`
	Weight   string `json:"weight"`
}

// FingerprintAllocationsResponse lists the allocation weights of a
// giving fingerprint grouped as a flat list.
type FingerprintAllocationsResponse struct {
	FingerprintID string           `json:"fingerprint_id"`
	Allocations   []AllocationItem `json:"allocations"`
}
