package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/givingprint/payment-service/internal/domain/model"
	domainRepo "github.com/givingprint/payment-service/internal/domain/repository"
)

// PaymentResolver matches an inbound webhook event to a payment record.
// Lookups run in a fixed order from the most to the least reliable key, and
// every miss leaves a diagnostic log entry so operators can reconstruct why
// an event landed where it did.
type PaymentResolver struct {
	paymentRepo domainRepo.PaymentRepository
	logRepo     domainRepo.PaymentLogRepository
	logger      *zap.Logger
}

// NewPaymentResolver creates a new payment resolver
func NewPaymentResolver(
	paymentRepo domainRepo.PaymentRepository,
	logRepo domainRepo.PaymentLogRepository,
	logger *zap.Logger,
) *PaymentResolver {
	return &PaymentResolver{
		paymentRepo: paymentRepo,
		logRepo:     logRepo,
		logger:      logger,
	}
}

// ResolveForSession resolves a checkout session event against a payment
// record: first the payment ID carried in session metadata, then the
// provider session ID. Returns (nil, nil) when nothing matches.
func (r *PaymentResolver) ResolveForSession(ctx context.Context, eventID, metadataPaymentID, sessionID string) (*model.Payment, error) {
	if metadataPaymentID != "" {
		payment, err := r.paymentRepo.GetByID(ctx, metadataPaymentID)
		if err != nil {
			return nil, err
		}
		if payment != nil {
			return payment, nil
		}
		r.recordMiss(ctx, eventID, "metadata.payment_id", metadataPaymentID)
	}

	if sessionID != "" {
		payment, err := r.paymentRepo.GetBySessionID(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if payment != nil {
			return payment, nil
		}
		r.recordMiss(ctx, eventID, "provider_session_id", sessionID)
	}

	return nil, nil
}

// ResolveForIntent resolves a payment intent event: the provider intent ID
// first, then the payment ID from intent metadata, and finally the latest
// pending record for the receipt email. The email match is a heuristic of
// last resort and is logged every time it fires.
func (r *PaymentResolver) ResolveForIntent(ctx context.Context, eventID, intentID, metadataPaymentID, donorEmail string) (*model.Payment, error) {
	if intentID != "" {
		payment, err := r.paymentRepo.GetByIntentID(ctx, intentID)
		if err != nil {
			return nil, err
		}
		if payment != nil {
			return payment, nil
		}
		r.recordMiss(ctx, eventID, "provider_intent_id", intentID)
	}

	if metadataPaymentID != "" {
		payment, err := r.paymentRepo.GetByID(ctx, metadataPaymentID)
		if err != nil {
			return nil, err
		}
		if payment != nil {
			return payment, nil
		}
		r.recordMiss(ctx, eventID, "metadata.payment_id", metadataPaymentID)
	}

	if donorEmail != "" {
		payment, err := r.paymentRepo.GetLatestPendingByEmail(ctx, donorEmail)
		if err != nil {
			return nil, err
		}
		if payment != nil {
			recordAge := time.Since(payment.CreatedAt)
			r.logger.Warn("Payment resolved by donor email heuristic",
				zap.String("event_id", eventID),
				zap.String("payment_id", payment.ID),
				zap.String("intent_id", intentID),
				zap.Duration("record_age", recordAge))

			r.appendLog(ctx, &model.PaymentLog{
				PaymentID: &payment.ID,
				Status:    model.LogEmailFallback,
				Message:   "payment matched by latest pending record for donor email",
				Metadata: model.JSONB{
					"event_id":           eventID,
					"intent_id":          intentID,
					"record_age_seconds": int64(recordAge.Seconds()),
				},
			})
			return payment, nil
		}
		r.recordMiss(ctx, eventID, "donor_email", donorEmail)
	}

	return nil, nil
}

func (r *PaymentResolver) recordMiss(ctx context.Context, eventID, key, value string) {
	r.logger.Debug("Payment lookup miss",
		zap.String("event_id", eventID),
		zap.String("lookup_key", key))

	r.appendLog(ctx, &model.PaymentLog{
		Status:  model.LogLookupMiss,
		Message: "no payment record matched lookup key " + key,
		Metadata: model.JSONB{
			"event_id":     eventID,
			"lookup_key":   key,
			"lookup_value": value,
		},
	})
}

// appendLog writes a diagnostic entry best-effort. Diagnostics never fail
// the reconciliation itself.
func (r *PaymentResolver) appendLog(ctx context.Context, entry *model.PaymentLog) {
	if err := r.logRepo.Append(ctx, entry); err != nil {
		r.logger.Warn("Failed to append payment log entry",
			zap.String("status", entry.Status),
			zap.Error(err))
	}
}
