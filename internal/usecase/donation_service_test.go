package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/givingprint/payment-service/internal/domain/dto"
	domainErrors "github.com/givingprint/payment-service/internal/domain/errors"
	"github.com/givingprint/payment-service/internal/domain/model"
	"github.com/givingprint/payment-service/internal/domain/provider"
	domainRepo "github.com/givingprint/payment-service/internal/domain/repository"
	"github.com/givingprint/payment-service/internal/usecase"
)

type donationServiceMocks struct {
	payments     *MockPaymentRepository
	logs         *MockPaymentLogRepository
	campaigns    *MockCampaignPaymentRepository
	recipients   *MockRecipientRepository
	fingerprints *MockFingerprintRepository
	checkout     *MockCheckoutProvider
}

func newDonationService(t *testing.T) (*usecase.DonationService, *donationServiceMocks) {
	m := &donationServiceMocks{
		payments:     new(MockPaymentRepository),
		logs:         new(MockPaymentLogRepository),
		campaigns:    new(MockCampaignPaymentRepository),
		recipients:   new(MockRecipientRepository),
		fingerprints: new(MockFingerprintRepository),
		checkout:     new(MockCheckoutProvider),
	}
	service := usecase.NewDonationService(
		m.payments, m.logs, m.campaigns, m.recipients, m.fingerprints, m.checkout, zap.NewNop())
	return service, m
}

func publishedProfile() *domainRepo.RecipientProfile {
	return &domainRepo.RecipientProfile{
		UserID:      "user-1",
		DisplayName: "Ada",
		Published:   true,
	}
}

func TestDonationService_CreateDonation(t *testing.T) {
	ctx := context.Background()

	req := &dto.CreateDonationRequest{
		RecipientUserID: "user-1",
		AmountCents:     2500,
		DonorEmail:      "donor@example.com",
		CampaignID:      "camp-1",
	}

	t.Run("creates pending record and opens checkout", func(t *testing.T) {
		service, m := newDonationService(t)

		m.recipients.On("GetProfile", ctx, "user-1").Return(publishedProfile(), nil)

		var created *model.Payment
		m.payments.On("Create", ctx, mock.Anything).Run(func(args mock.Arguments) {
			created = args.Get(1).(*model.Payment)
		}).Return(nil)
		m.logs.On("Append", ctx, mock.Anything).Return(nil)

		m.checkout.On("CreateDonationSession", ctx, mock.MatchedBy(func(p *provider.CheckoutParams) bool {
			return p.AmountCents == 2500 && p.Currency == "usd" && p.CampaignID == "camp-1" && p.PaymentID != ""
		})).Return(&provider.CheckoutSession{
			SessionID:   "cs_new",
			CheckoutURL: "https://checkout.example.com/cs_new",
		}, nil)

		m.payments.On("UpdateFields", ctx, mock.Anything, map[string]interface{}{
			"provider_session_id": "cs_new",
		}).Return(nil)

		resp, err := service.CreateDonation(ctx, req)

		assert.NoError(t, err)
		require.NotNil(t, resp)
		require.NotNil(t, created)
		assert.Equal(t, created.ID, resp.PaymentID)
		assert.Equal(t, "pending", resp.Status)
		assert.Equal(t, "https://checkout.example.com/cs_new", resp.CheckoutURL)
		assert.Equal(t, model.PaymentStatusPending, created.Status)
		assert.Equal(t, model.PaymentSourceDonor, created.Source)
		require.NotNil(t, created.DonorEmail)
		assert.Equal(t, "donor@example.com", *created.DonorEmail)
		m.payments.AssertExpectations(t)
		m.checkout.AssertExpectations(t)
	})

	t.Run("rejects unpublished recipient", func(t *testing.T) {
		service, m := newDonationService(t)

		m.recipients.On("GetProfile", ctx, "user-1").Return(&domainRepo.RecipientProfile{
			UserID:    "user-1",
			Published: false,
		}, nil)

		resp, err := service.CreateDonation(ctx, req)

		assert.Nil(t, resp)
		require.Error(t, err)

		var recipientErr *domainErrors.RecipientError
		require.ErrorAs(t, err, &recipientErr)
		assert.Equal(t, domainErrors.ErrTypeProfileNotPublished, recipientErr.Type)
		m.payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("validates fingerprint allocation weights", func(t *testing.T) {
		service, m := newDonationService(t)

		reqWithFingerprint := &dto.CreateDonationRequest{
			RecipientUserID: "user-1",
			AmountCents:     2500,
			FingerprintID:   "fp-1",
		}

		m.recipients.On("GetProfile", ctx, "user-1").Return(publishedProfile(), nil)
		m.fingerprints.On("GetAllocations", ctx, "fp-1").Return([]model.FingerprintAllocation{
			{FingerprintID: "fp-1", Category: model.AllocationCategoryCharity, TargetID: "ch-1", Weight: decimal.NewFromInt(60)},
			{FingerprintID: "fp-1", Category: model.AllocationCategoryCharity, TargetID: "ch-2", Weight: decimal.NewFromInt(30)},
		}, nil)

		resp, err := service.CreateDonation(ctx, reqWithFingerprint)

		assert.Nil(t, resp)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid fingerprint")
		m.payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("uses recipient default fingerprint when none given", func(t *testing.T) {
		service, m := newDonationService(t)

		profile := publishedProfile()
		profile.DefaultFingerprintID = "fp-default"

		m.recipients.On("GetProfile", ctx, "user-1").Return(profile, nil)
		m.fingerprints.On("GetAllocations", ctx, "fp-default").Return([]model.FingerprintAllocation{
			{FingerprintID: "fp-default", Category: model.AllocationCategoryCharity, TargetID: "ch-1", Weight: decimal.NewFromInt(100)},
		}, nil)
		m.payments.On("Create", ctx, mock.Anything).Return(nil)
		m.logs.On("Append", ctx, mock.Anything).Return(nil)
		m.checkout.On("CreateDonationSession", ctx, mock.MatchedBy(func(p *provider.CheckoutParams) bool {
			return p.FingerprintID == "fp-default"
		})).Return(&provider.CheckoutSession{SessionID: "cs_new", CheckoutURL: "https://x"}, nil)
		m.payments.On("UpdateFields", ctx, mock.Anything, mock.Anything).Return(nil)

		_, err := service.CreateDonation(ctx, &dto.CreateDonationRequest{
			RecipientUserID: "user-1",
			AmountCents:     1000,
		})

		assert.NoError(t, err)
		m.fingerprints.AssertExpectations(t)
	})

	t.Run("marks record failed when checkout cannot be opened", func(t *testing.T) {
		service, m := newDonationService(t)

		m.recipients.On("GetProfile", ctx, "user-1").Return(publishedProfile(), nil)
		m.payments.On("Create", ctx, mock.Anything).Return(nil)
		m.logs.On("Append", ctx, mock.Anything).Return(nil)
		m.checkout.On("CreateDonationSession", ctx, mock.Anything).Return(nil, &provider.ProviderError{
			Code:    "CHECKOUT_SESSION_FAILED",
			Message: "failed to create checkout session",
		})
		m.payments.On("TransitionStatus", ctx, mock.Anything, model.PaymentStatusFailed).Return(true, nil)

		resp, err := service.CreateDonation(ctx, req)

		assert.Nil(t, resp)
		require.Error(t, err)
		m.payments.AssertCalled(t, "TransitionStatus", ctx, mock.Anything, model.PaymentStatusFailed)
	})
}

func TestDonationService_GetDonationStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("returns polling view", func(t *testing.T) {
		service, m := newDonationService(t)

		failure := "card declined"
		m.payments.On("GetByID", ctx, "pay-1").Return(&model.Payment{
			ID:             "pay-1",
			Status:         model.PaymentStatusFailed,
			AmountCents:    2500,
			Currency:       "usd",
			FailureMessage: &failure,
		}, nil)

		resp, err := service.GetDonationStatus(ctx, "pay-1")

		assert.NoError(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, "failed", resp.Status)
		require.NotNil(t, resp.FailureMessage)
		assert.Equal(t, "card declined", *resp.FailureMessage)
	})

	t.Run("unknown payment returns nil", func(t *testing.T) {
		service, m := newDonationService(t)

		m.payments.On("GetByID", ctx, "pay-missing").Return(nil, nil)

		resp, err := service.GetDonationStatus(ctx, "pay-missing")

		assert.NoError(t, err)
		assert.Nil(t, resp)
	})
}

func TestDonationService_GetCampaignFeed(t *testing.T) {
	ctx := context.Background()
	service, m := newDonationService(t)

	name := "Grace"
	m.payments.On("ListCompletedByCampaign", ctx, "camp-1", 20).Return([]*model.Payment{
		{ID: "pay-1", Status: model.PaymentStatusCompleted, AmountCents: 2500, Currency: "usd", DonorName: &name},
	}, nil)
	m.campaigns.On("CountByCampaign", ctx, "camp-1").Return(int64(7), nil)

	resp, err := service.GetCampaignFeed(ctx, "camp-1", 0)

	assert.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, int64(7), resp.TotalCount)
	require.Len(t, resp.Payments, 1)
	assert.Equal(t, "pay-1", resp.Payments[0].PaymentID)
	require.NotNil(t, resp.Payments[0].DonorName)
	assert.Equal(t, "Grace", *resp.Payments[0].DonorName)
}
