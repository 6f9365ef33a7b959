package repository

import (
	"context"

	"github.com/givingprint/payment-service/internal/domain/model"
)

// PaymentRepository is the persistence contract for payment records.
// Lookup methods return (nil, nil) when no record matches so the resolution
// chain can fall through without treating a miss as a failure.
type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	GetByID(ctx context.Context, id string) (*model.Payment, error)
	GetBySessionID(ctx context.Context, sessionID string) (*model.Payment, error)
	GetByIntentID(ctx context.Context, intentID string) (*model.Payment, error)

	// GetLatestPendingByEmail is the heuristic fallback: the most recent
	// pending record for the donor email, or (nil, nil).
	GetLatestPendingByEmail(ctx context.Context, email string) (*model.Payment, error)

	// UpdateFields applies a field-level partial update; concurrent handlers
	// touching disjoint fields must not clobber each other.
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error

	// TransitionStatus performs an atomic conditional status change honoring
	// the forward-only invariant. It reports false when the record was
	// already at or past the requested status.
	TransitionStatus(ctx context.Context, id string, to model.PaymentStatus) (bool, error)

	ListByRecipient(ctx context.Context, recipientUserID string, limit, offset int) ([]*model.Payment, error)
	ListCompletedByCampaign(ctx context.Context, campaignID string, limit int) ([]*model.Payment, error)
}
