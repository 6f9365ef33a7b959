package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	stripe "github.com/stripe/stripe-go/v79"
	"go.uber.org/zap"

	domainErrors "github.com/givingprint/payment-service/internal/domain/errors"
	"github.com/givingprint/payment-service/internal/domain/model"
	"github.com/givingprint/payment-service/internal/usecase"
)

func newIntentReconciler(paymentRepo *MockPaymentRepository, logRepo *MockPaymentLogRepository, campaignRepo *MockCampaignPaymentRepository, publisher *MockStatusPublisher) *usecase.IntentReconciler {
	logger := zap.NewNop()
	resolver := usecase.NewPaymentResolver(paymentRepo, logRepo, logger)
	linker := usecase.NewCampaignLinkService(campaignRepo, logRepo, logger)
	return usecase.NewIntentReconciler(paymentRepo, logRepo, resolver, linker, publisher, logger)
}

func succeededIntent() *stripe.PaymentIntent {
	return &stripe.PaymentIntent{
		ID:           "pi_1",
		Amount:       2500,
		Currency:     stripe.CurrencyUSD,
		LatestCharge: &stripe.Charge{ID: "ch_1"},
		PaymentMethod: &stripe.PaymentMethod{
			ID: "pm_1",
		},
		Metadata: map[string]string{
			"payment_id":  "pay-1",
			"campaign_id": "camp-1",
		},
	}
}

func TestIntentReconciler_HandleIntentSucceeded(t *testing.T) {
	ctx := context.Background()

	t.Run("completes resolved payment and publishes", func(t *testing.T) {
		mockRepo := new(MockPaymentRepository)
		mockLogs := new(MockPaymentLogRepository)
		mockCampaigns := new(MockCampaignPaymentRepository)
		mockPublisher := new(MockStatusPublisher)
		reconciler := newIntentReconciler(mockRepo, mockLogs, mockCampaigns, mockPublisher)

		existing := &model.Payment{ID: "pay-1", Status: model.PaymentStatusProcessing, AmountCents: 2500}
		mockRepo.On("GetByIntentID", ctx, "pi_1").Return(existing, nil)
		mockRepo.On("UpdateFields", ctx, "pay-1", mock.MatchedBy(func(fields map[string]interface{}) bool {
			return fields["provider_intent_id"] == "pi_1" &&
				fields["provider_charge_id"] == "ch_1" &&
				fields["provider_payment_method_id"] == "pm_1"
		})).Return(nil)
		mockRepo.On("TransitionStatus", ctx, "pay-1", model.PaymentStatusCompleted).Return(true, nil)
		mockCampaigns.On("Link", ctx, "camp-1", "pay-1").Return(true, nil)
		mockPublisher.On("PublishStatusChange", ctx, mock.MatchedBy(func(e usecase.StatusEvent) bool {
			return e.PaymentID == "pay-1" && e.Status == "completed"
		})).Return(nil)
		mockLogs.On("Append", ctx, mock.Anything).Return(nil)

		paymentID, err := reconciler.HandleIntentSucceeded(ctx, "evt_1", succeededIntent())

		assert.NoError(t, err)
		require.NotNil(t, paymentID)
		assert.Equal(t, "pay-1", *paymentID)
		mockRepo.AssertExpectations(t)
		mockPublisher.AssertExpectations(t)
	})

	t.Run("success after failure records a conflict and acks", func(t *testing.T) {
		mockRepo := new(MockPaymentRepository)
		mockLogs := new(MockPaymentLogRepository)
		mockCampaigns := new(MockCampaignPaymentRepository)
		mockPublisher := new(MockStatusPublisher)
		reconciler := newIntentReconciler(mockRepo, mockLogs, mockCampaigns, mockPublisher)

		existing := &model.Payment{ID: "pay-1", Status: model.PaymentStatusFailed}
		mockRepo.On("GetByIntentID", ctx, "pi_1").Return(existing, nil)
		mockRepo.On("UpdateFields", ctx, "pay-1", mock.Anything).Return(nil)
		mockRepo.On("TransitionStatus", ctx, "pay-1", model.PaymentStatusCompleted).Return(false, nil)
		mockLogs.On("Append", ctx, mock.Anything).Return(nil)

		paymentID, err := reconciler.HandleIntentSucceeded(ctx, "evt_1", succeededIntent())

		assert.NoError(t, err)
		require.NotNil(t, paymentID)

		conflictLogged := false
		for _, call := range mockLogs.Calls {
			entry := call.Arguments.Get(1).(*model.PaymentLog)
			if entry.Status == model.LogStatusConflict {
				conflictLogged = true
			}
		}
		assert.True(t, conflictLogged)
		mockPublisher.AssertNotCalled(t, "PublishStatusChange", mock.Anything, mock.Anything)
		mockCampaigns.AssertNotCalled(t, "Link", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("synthesizes completed record for unknown intent", func(t *testing.T) {
		mockRepo := new(MockPaymentRepository)
		mockLogs := new(MockPaymentLogRepository)
		mockCampaigns := new(MockCampaignPaymentRepository)
		mockPublisher := new(MockStatusPublisher)
		reconciler := newIntentReconciler(mockRepo, mockLogs, mockCampaigns, mockPublisher)

		mockRepo.On("GetByIntentID", ctx, "pi_1").Return(nil, nil)
		mockRepo.On("GetByID", ctx, "pay-1").Return(nil, nil)

		var created *model.Payment
		mockRepo.On("Create", ctx, mock.Anything).Run(func(args mock.Arguments) {
			created = args.Get(1).(*model.Payment)
		}).Return(nil)
		mockCampaigns.On("Link", ctx, "camp-1", mock.Anything).Return(true, nil)
		mockPublisher.On("PublishStatusChange", ctx, mock.Anything).Return(nil)
		mockLogs.On("Append", ctx, mock.Anything).Return(nil)

		paymentID, err := reconciler.HandleIntentSucceeded(ctx, "evt_1", succeededIntent())

		assert.NoError(t, err)
		require.NotNil(t, paymentID)
		require.NotNil(t, created)
		assert.Equal(t, model.PaymentStatusCompleted, created.Status)
		assert.Equal(t, model.PaymentSourceWebhook, created.Source)
		require.NotNil(t, created.ProviderChargeID)
		assert.Equal(t, "ch_1", *created.ProviderChargeID)
	})

	t.Run("refuses to synthesize without amount", func(t *testing.T) {
		mockRepo := new(MockPaymentRepository)
		mockLogs := new(MockPaymentLogRepository)
		mockCampaigns := new(MockCampaignPaymentRepository)
		mockPublisher := new(MockStatusPublisher)
		reconciler := newIntentReconciler(mockRepo, mockLogs, mockCampaigns, mockPublisher)

		bare := &stripe.PaymentIntent{ID: "pi_bare"}
		mockRepo.On("GetByIntentID", ctx, "pi_bare").Return(nil, nil)
		mockLogs.On("Append", ctx, mock.Anything).Return(nil)

		paymentID, err := reconciler.HandleIntentSucceeded(ctx, "evt_1", bare)

		assert.Nil(t, paymentID)
		require.Error(t, err)

		var webhookErr *domainErrors.WebhookError
		require.ErrorAs(t, err, &webhookErr)
		assert.Equal(t, domainErrors.ErrTypeSynthesisFailed, webhookErr.Type)
	})
}

func TestIntentReconciler_HandleIntentFailed(t *testing.T) {
	ctx := context.Background()

	failedIntent := func() *stripe.PaymentIntent {
		return &stripe.PaymentIntent{
			ID: "pi_1",
			LastPaymentError: &stripe.Error{
				Msg: "Your card was declined.",
			},
			Metadata: map[string]string{"payment_id": "pay-1"},
		}
	}

	t.Run("marks resolved payment failed with message", func(t *testing.T) {
		mockRepo := new(MockPaymentRepository)
		mockLogs := new(MockPaymentLogRepository)
		mockCampaigns := new(MockCampaignPaymentRepository)
		mockPublisher := new(MockStatusPublisher)
		reconciler := newIntentReconciler(mockRepo, mockLogs, mockCampaigns, mockPublisher)

		existing := &model.Payment{ID: "pay-1", Status: model.PaymentStatusProcessing}
		mockRepo.On("GetByIntentID", ctx, "pi_1").Return(existing, nil)
		mockRepo.On("UpdateFields", ctx, "pay-1", mock.MatchedBy(func(fields map[string]interface{}) bool {
			return fields["failure_message"] == "Your card was declined." &&
				fields["provider_intent_id"] == "pi_1"
		})).Return(nil)
		mockRepo.On("TransitionStatus", ctx, "pay-1", model.PaymentStatusFailed).Return(true, nil)
		mockPublisher.On("PublishStatusChange", ctx, mock.MatchedBy(func(e usecase.StatusEvent) bool {
			return e.PaymentID == "pay-1" && e.Status == "failed"
		})).Return(nil)
		mockLogs.On("Append", ctx, mock.Anything).Return(nil)

		paymentID, err := reconciler.HandleIntentFailed(ctx, "evt_1", failedIntent())

		assert.NoError(t, err)
		require.NotNil(t, paymentID)
		mockCampaigns.AssertNotCalled(t, "Link", mock.Anything, mock.Anything, mock.Anything)
		mockPublisher.AssertExpectations(t)
	})

	t.Run("failure after completion records a conflict", func(t *testing.T) {
		mockRepo := new(MockPaymentRepository)
		mockLogs := new(MockPaymentLogRepository)
		mockCampaigns := new(MockCampaignPaymentRepository)
		mockPublisher := new(MockStatusPublisher)
		reconciler := newIntentReconciler(mockRepo, mockLogs, mockCampaigns, mockPublisher)

		existing := &model.Payment{ID: "pay-1", Status: model.PaymentStatusCompleted}
		mockRepo.On("GetByIntentID", ctx, "pi_1").Return(existing, nil)
		mockRepo.On("UpdateFields", ctx, "pay-1", mock.Anything).Return(nil)
		mockRepo.On("TransitionStatus", ctx, "pay-1", model.PaymentStatusFailed).Return(false, nil)
		mockLogs.On("Append", ctx, mock.Anything).Return(nil)

		paymentID, err := reconciler.HandleIntentFailed(ctx, "evt_1", failedIntent())

		assert.NoError(t, err)
		require.NotNil(t, paymentID)
		mockPublisher.AssertNotCalled(t, "PublishStatusChange", mock.Anything, mock.Anything)
	})

	t.Run("failure for unknown record is noted and acked", func(t *testing.T) {
		mockRepo := new(MockPaymentRepository)
		mockLogs := new(MockPaymentLogRepository)
		mockCampaigns := new(MockCampaignPaymentRepository)
		mockPublisher := new(MockStatusPublisher)
		reconciler := newIntentReconciler(mockRepo, mockLogs, mockCampaigns, mockPublisher)

		mockRepo.On("GetByIntentID", ctx, "pi_1").Return(nil, nil)
		mockRepo.On("GetByID", ctx, "pay-1").Return(nil, nil)
		mockLogs.On("Append", ctx, mock.Anything).Return(nil)

		paymentID, err := reconciler.HandleIntentFailed(ctx, "evt_1", failedIntent())

		assert.NoError(t, err)
		assert.Nil(t, paymentID)

		notFoundLogged := false
		for _, call := range mockLogs.Calls {
			entry := call.Arguments.Get(1).(*model.PaymentLog)
			if entry.Status == model.LogPaymentNotFound {
				notFoundLogged = true
			}
		}
		assert.True(t, notFoundLogged)
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}
