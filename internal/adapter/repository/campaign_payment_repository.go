package repository

import (
	"context"
	"fmt"

	"github.com/givingprint/payment-service/internal/domain/model"
	domainRepo "github.com/givingprint/payment-service/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type campaignPaymentRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewCampaignPaymentRepository creates a new campaign payment repository
func NewCampaignPaymentRepository(db *gorm.DB, logger *zap.Logger) domainRepo.CampaignPaymentRepository {
	return &campaignPaymentRepository{
		db:     db,
		logger: logger,
	}
}

// Link associates a payment with a campaign. It reports false when the
// linkage already existed, so callers can distinguish first-time linkage
// from a replayed event.
func (r *campaignPaymentRepository) Link(ctx context.Context, campaignID, paymentID string) (bool, error) {
	link := &model.CampaignPayment{
		CampaignID: campaignID,
		PaymentID:  paymentID,
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(link)

	if result.Error != nil {
		r.logger.Error("Failed to link payment to campaign",
			zap.String("campaign_id", campaignID),
			zap.String("payment_id", paymentID),
			zap.Error(result.Error))
		return false, fmt.Errorf("failed to link payment to campaign: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

// GetByPayment retrieves the campaign linkages for a payment
func (r *campaignPaymentRepository) GetByPayment(ctx context.Context, paymentID string) ([]*model.CampaignPayment, error) {
	var links []*model.CampaignPayment

	err := r.db.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		Find(&links).Error

	if err != nil {
		r.logger.Error("Failed to get campaign linkages",
			zap.String("payment_id", paymentID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get campaign linkages: %w", err)
	}

	return links, nil
}

// CountByCampaign counts linked payments for a campaign
func (r *campaignPaymentRepository) CountByCampaign(ctx context.Context, campaignID string) (int64, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&model.CampaignPayment{}).
		Where("campaign_id = ?", campaignID).
		Count(&count).Error

	if err != nil {
		r.logger.Error("Failed to count campaign payments",
			zap.String("campaign_id", campaignID),
			zap.Error(err))
		return 0, fmt.Errorf("failed to count campaign payments: %w", err)
	}

	return count, nil
}
