package repository

import (
	"context"

	"github.com/givingprint/payment-service/internal/domain/model"
)

// PaymentLogRepository appends diagnostic entries. Entries are never updated
// or deleted.
type PaymentLogRepository interface {
	Append(ctx context.Context, entry *model.PaymentLog) error
	ListByPayment(ctx context.Context, paymentID string, limit int) ([]*model.PaymentLog, error)

	// ListUnresolved returns entries written before any payment record could
	// be resolved, newest first. Used for manual review.
	ListUnresolved(ctx context.Context, limit int) ([]*model.PaymentLog, error)
}
