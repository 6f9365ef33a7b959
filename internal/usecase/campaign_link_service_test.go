package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/givingprint/payment-service/internal/domain/model"
	"github.com/givingprint/payment-service/internal/usecase"
)

func TestCampaignLinkService_LinkPayment(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	t.Run("first link inserts and logs", func(t *testing.T) {
		mockCampaigns := new(MockCampaignPaymentRepository)
		mockLogs := new(MockPaymentLogRepository)
		service := usecase.NewCampaignLinkService(mockCampaigns, mockLogs, logger)

		mockCampaigns.On("Link", ctx, "camp-1", "pay-1").Return(true, nil)
		mockLogs.On("Append", ctx, mock.MatchedBy(func(entry *model.PaymentLog) bool {
			return entry.Status == model.LogCampaignLinked && *entry.PaymentID == "pay-1"
		})).Return(nil)

		err := service.LinkPayment(ctx, "camp-1", "pay-1")

		assert.NoError(t, err)
		mockCampaigns.AssertExpectations(t)
		mockLogs.AssertExpectations(t)
	})

	t.Run("replayed link is a silent success", func(t *testing.T) {
		mockCampaigns := new(MockCampaignPaymentRepository)
		mockLogs := new(MockPaymentLogRepository)
		service := usecase.NewCampaignLinkService(mockCampaigns, mockLogs, logger)

		mockCampaigns.On("Link", ctx, "camp-1", "pay-1").Return(false, nil)

		err := service.LinkPayment(ctx, "camp-1", "pay-1")

		assert.NoError(t, err)
		mockLogs.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("missing identifiers are rejected", func(t *testing.T) {
		mockCampaigns := new(MockCampaignPaymentRepository)
		mockLogs := new(MockPaymentLogRepository)
		service := usecase.NewCampaignLinkService(mockCampaigns, mockLogs, logger)

		err := service.LinkPayment(ctx, "", "pay-1")

		assert.Error(t, err)
		mockCampaigns.AssertNotCalled(t, "Link", mock.Anything, mock.Anything, mock.Anything)
	})
}
