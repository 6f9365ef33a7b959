package repository

import (
	"context"
	"fmt"

	"github.com/givingprint/payment-service/internal/domain/model"
	domainRepo "github.com/givingprint/payment-service/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fingerprintRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewFingerprintRepository creates a new fingerprint repository
func NewFingerprintRepository(db *gorm.DB, logger *zap.Logger) domainRepo.FingerprintRepository {
	return &fingerprintRepository{
		db:     db,
		logger: logger,
	}
}

// GetAllocations retrieves the allocation weights of a giving fingerprint
func (r *fingerprintRepository) GetAllocations(ctx context.Context, fingerprintID string) ([]model.FingerprintAllocation, error) {
	var allocations []model.FingerprintAllocation

	err := r.db.WithContext(ctx).
		Where("fingerprint_id = ?", fingerprintID).
		Order("category ASC, weight DESC").
		Find(&allocations).Error

	if err != nil {
		r.logger.Error("Failed to get fingerprint allocations",
			zap.String("fingerprint_id", fingerprintID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get fingerprint allocations: %w", err)
	}

	return allocations, nil
}
