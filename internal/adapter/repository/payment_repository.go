package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/givingprint/payment-service/internal/domain/model"
	domainRepo "github.com/givingprint/payment-service/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// paymentRepository implements the PaymentRepository interface
type paymentRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewPaymentRepository creates a new payment repository instance
func NewPaymentRepository(db *gorm.DB, logger *zap.Logger) domainRepo.PaymentRepository {
	return &paymentRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new payment record
func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		r.logger.Error("Failed to create payment",
			zap.String("payment_id", payment.ID),
			zap.Error(err))
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

// GetByID retrieves a payment by its internal ID
func (r *paymentRepository) GetByID(ctx context.Context, id string) (*model.Payment, error) {
	return r.getOne(ctx, "id = ?", id)
}

// GetBySessionID retrieves a payment by its provider checkout session ID
func (r *paymentRepository) GetBySessionID(ctx context.Context, sessionID string) (*model.Payment, error) {
	return r.getOne(ctx, "provider_session_id = ?", sessionID)
}

// GetByIntentID retrieves a payment by its provider payment intent ID
func (r *paymentRepository) GetByIntentID(ctx context.Context, intentID string) (*model.Payment, error) {
	return r.getOne(ctx, "provider_intent_id = ?", intentID)
}

// GetLatestPendingByEmail retrieves the most recent pending payment for a
// donor email. Multiple concurrent pending donations from the same email is
// an accepted ambiguity; callers log the match so it stays observable.
func (r *paymentRepository) GetLatestPendingByEmail(ctx context.Context, email string) (*model.Payment, error) {
	var payment model.Payment

	err := r.db.WithContext(ctx).
		Where("donor_email = ? AND status = ?", email, model.PaymentStatusPending).
		Order("created_at DESC").
		First(&payment).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get pending payment by email",
			zap.String("donor_email", email),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get pending payment by email: %w", err)
	}

	return &payment, nil
}

// UpdateFields applies a field-level partial update to a payment record
func (r *paymentRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}

	result := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("id = ?", id).
		Updates(fields)

	if result.Error != nil {
		r.logger.Error("Failed to update payment fields",
			zap.String("payment_id", id),
			zap.Error(result.Error))
		return fmt.Errorf("failed to update payment fields: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("payment not found: %s", id)
	}

	return nil
}

// TransitionStatus performs an atomic conditional status transition. The
// WHERE clause encodes the forward-only invariant so concurrent deliveries
// cannot regress a terminal record; a rejected transition is reported as
// (false, nil), never an error.
func (r *paymentRepository) TransitionStatus(ctx context.Context, id string, to model.PaymentStatus) (bool, error) {
	var allowedFrom []model.PaymentStatus
	switch to {
	case model.PaymentStatusProcessing:
		allowedFrom = []model.PaymentStatus{model.PaymentStatusPending}
	case model.PaymentStatusCompleted, model.PaymentStatusFailed:
		allowedFrom = []model.PaymentStatus{model.PaymentStatusPending, model.PaymentStatusProcessing}
	default:
		return false, fmt.Errorf("invalid target status: %s", to)
	}

	result := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("id = ? AND status IN ?", id, allowedFrom).
		Update("status", to)

	if result.Error != nil {
		r.logger.Error("Failed to transition payment status",
			zap.String("payment_id", id),
			zap.String("to_status", string(to)),
			zap.Error(result.Error))
		return false, fmt.Errorf("failed to transition payment status: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

// ListByRecipient retrieves payments received by a user, newest first
func (r *paymentRepository) ListByRecipient(ctx context.Context, recipientUserID string, limit, offset int) ([]*model.Payment, error) {
	var payments []*model.Payment

	query := r.db.WithContext(ctx).
		Where("recipient_user_id = ?", recipientUserID).
		Order("created_at DESC").
		Offset(offset)

	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&payments).Error; err != nil {
		r.logger.Error("Failed to list payments by recipient",
			zap.String("recipient_user_id", recipientUserID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list payments by recipient: %w", err)
	}

	return payments, nil
}

// ListCompletedByCampaign retrieves completed donations for a campaign's
// activity feed, newest first
func (r *paymentRepository) ListCompletedByCampaign(ctx context.Context, campaignID string, limit int) ([]*model.Payment, error) {
	var payments []*model.Payment

	query := r.db.WithContext(ctx).
		Where("campaign_id = ? AND status = ?", campaignID, model.PaymentStatusCompleted).
		Order("created_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&payments).Error; err != nil {
		r.logger.Error("Failed to list campaign donations",
			zap.String("campaign_id", campaignID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list campaign donations: %w", err)
	}

	return payments, nil
}

func (r *paymentRepository) getOne(ctx context.Context, query string, arg interface{}) (*model.Payment, error) {
	var payment model.Payment

	err := r.db.WithContext(ctx).
		Where(query, arg).
		First(&payment).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get payment",
			zap.String("query", query),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return &payment, nil
}
