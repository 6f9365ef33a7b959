package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/givingprint/payment-service/internal/domain/model"
	domainRepo "github.com/givingprint/payment-service/internal/domain/repository"
)

// CampaignLinkService attaches payments to fundraising campaigns. Linking is
// idempotent: re-delivered events may ask for the same linkage many times
// and only the first request inserts a row.
type CampaignLinkService struct {
	campaignRepo domainRepo.CampaignPaymentRepository
	logRepo      domainRepo.PaymentLogRepository
	logger       *zap.Logger
}

// NewCampaignLinkService creates a new campaign link service
func NewCampaignLinkService(
	campaignRepo domainRepo.CampaignPaymentRepository,
	logRepo domainRepo.PaymentLogRepository,
	logger *zap.Logger,
) *CampaignLinkService {
	return &CampaignLinkService{
		campaignRepo: campaignRepo,
		logRepo:      logRepo,
		logger:       logger,
	}
}

// LinkPayment links a payment to a campaign if not already linked
func (s *CampaignLinkService) LinkPayment(ctx context.Context, campaignID, paymentID string) error {
	if campaignID == "" || paymentID == "" {
		return fmt.Errorf("campaign_id and payment_id are required")
	}

	inserted, err := s.campaignRepo.Link(ctx, campaignID, paymentID)
	if err != nil {
		return err
	}

	if !inserted {
		s.logger.Debug("Payment already linked to campaign",
			zap.String("campaign_id", campaignID),
			zap.String("payment_id", paymentID))
		return nil
	}

	s.logger.Info("Payment linked to campaign",
		zap.String("campaign_id", campaignID),
		zap.String("payment_id", paymentID))

	if err := s.logRepo.Append(ctx, &model.PaymentLog{
		PaymentID: &paymentID,
		Status:    model.LogCampaignLinked,
		Message:   "payment linked to campaign",
		Metadata: model.JSONB{
			"campaign_id": campaignID,
		},
	}); err != nil {
		s.logger.Warn("Failed to append campaign link log entry",
			zap.String("payment_id", paymentID),
			zap.Error(err))
	}

	return nil
}

// CampaignPaymentCount returns the number of payments linked to a campaign
func (s *CampaignLinkService) CampaignPaymentCount(ctx context.Context, campaignID string) (int64, error) {
	return s.campaignRepo.CountByCampaign(ctx, campaignID)
}
