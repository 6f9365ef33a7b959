package provider

import (
	"context"
	"fmt"
)

// CheckoutParams carries everything needed to open a hosted checkout page
// for a donation. Metadata keys are echoed back on webhook events and drive
// payment record resolution, so callers must always set the payment ID.
type CheckoutParams struct {
	PaymentID       string
	AmountCents     int64
	Currency        string
	Description     string
	DonorEmail      string
	RecipientUserID string
	CampaignID      string
	FingerprintID   string
}

// CheckoutSession is the provider-side session opened for a donation.
type CheckoutSession struct {
	SessionID   string
	CheckoutURL string
}

// CheckoutProvider opens hosted checkout sessions with the payment provider.
type CheckoutProvider interface {
	CreateDonationSession(ctx context.Context, params *CheckoutParams) (*CheckoutSession, error)
}

// ProviderError represents an error returned by the payment provider
type ProviderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s - %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}
