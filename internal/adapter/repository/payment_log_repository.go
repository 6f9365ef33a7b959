package repository

import (
	"context"
	"fmt"

	"github.com/givingprint/payment-service/internal/domain/model"
	domainRepo "github.com/givingprint/payment-service/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type paymentLogRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewPaymentLogRepository creates a new payment log repository
func NewPaymentLogRepository(db *gorm.DB, logger *zap.Logger) domainRepo.PaymentLogRepository {
	return &paymentLogRepository{
		db:     db,
		logger: logger,
	}
}

// Append records a payment lifecycle entry
func (r *paymentLogRepository) Append(ctx context.Context, log *model.PaymentLog) error {
	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		r.logger.Error("Failed to append payment log",
			zap.String("status", log.Status),
			zap.Error(err))
		return fmt.Errorf("failed to append payment log: %w", err)
	}

	return nil
}

// ListByPayment retrieves log entries for a payment, oldest first
func (r *paymentLogRepository) ListByPayment(ctx context.Context, paymentID string, limit int) ([]*model.PaymentLog, error) {
	var logs []*model.PaymentLog

	query := r.db.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		Order("created_at ASC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&logs).Error; err != nil {
		r.logger.Error("Failed to list payment logs",
			zap.String("payment_id", paymentID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list payment logs: %w", err)
	}

	return logs, nil
}

// ListUnresolved retrieves entries recorded without a payment record,
// typically webhook events that could not be matched to a payment
func (r *paymentLogRepository) ListUnresolved(ctx context.Context, limit int) ([]*model.PaymentLog, error) {
	var logs []*model.PaymentLog

	query := r.db.WithContext(ctx).
		Where("payment_id IS NULL").
		Order("created_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&logs).Error; err != nil {
		r.logger.Error("Failed to list unresolved payment logs",
			zap.Error(err))
		return nil, fmt.Errorf("failed to list unresolved payment logs: %w", err)
	}

	return logs, nil
}
