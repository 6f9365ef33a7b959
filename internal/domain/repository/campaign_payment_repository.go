package repository

import (
	"context"

	"github.com/givingprint/payment-service/internal/domain/model"
)

// CampaignPaymentRepository manages the campaign/payment join table.
type CampaignPaymentRepository interface {
	// Link associates a payment with a campaign. Linking an already-linked
	// pair is a silent success; the return value reports whether a new row
	// was actually inserted.
	Link(ctx context.Context, campaignID, paymentID string) (bool, error)

	GetByPayment(ctx context.Context, paymentID string) ([]*model.CampaignPayment, error)
	CountByCampaign(ctx context.Context, campaignID string) (int64, error)
}
