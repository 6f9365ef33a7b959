package usecase

import (
	"context"

	stripe "github.com/stripe/stripe-go/v79"
	"go.uber.org/zap"

	domainErrors "github.com/givingprint/payment-service/internal/domain/errors"
	"github.com/givingprint/payment-service/internal/domain/model"
	domainRepo "github.com/givingprint/payment-service/internal/domain/repository"
)

// IntentReconciler reconciles payment intent events into terminal payment
// statuses. Status moves are atomic and forward-only, so a success and a
// failure racing for the same record can never both win.
type IntentReconciler struct {
	paymentRepo    domainRepo.PaymentRepository
	logRepo        domainRepo.PaymentLogRepository
	resolver       *PaymentResolver
	campaignLinker *CampaignLinkService
	publisher      StatusPublisher
	logger         *zap.Logger
}

// NewIntentReconciler creates a new intent reconciler
func NewIntentReconciler(
	paymentRepo domainRepo.PaymentRepository,
	logRepo domainRepo.PaymentLogRepository,
	resolver *PaymentResolver,
	campaignLinker *CampaignLinkService,
	publisher StatusPublisher,
	logger *zap.Logger,
) *IntentReconciler {
	return &IntentReconciler{
		paymentRepo:    paymentRepo,
		logRepo:        logRepo,
		resolver:       resolver,
		campaignLinker: campaignLinker,
		publisher:      publisher,
		logger:         logger,
	}
}

// HandleIntentSucceeded processes a payment_intent.succeeded event
func (r *IntentReconciler) HandleIntentSucceeded(ctx context.Context, eventID string, intent *stripe.PaymentIntent) (*string, error) {
	const eventType = "payment_intent.succeeded"

	payment, err := r.resolver.ResolveForIntent(ctx, eventID, intent.ID, intent.Metadata["payment_id"], intent.ReceiptEmail)
	if err != nil {
		return nil, domainErrors.NewPersistenceError(eventID, eventType, err)
	}

	if payment == nil {
		synthesized, synthErr := r.synthesizeCompletedPayment(ctx, eventID, intent)
		if synthErr != nil {
			return nil, synthErr
		}
		r.linkAndPublish(ctx, synthesized, intent.Metadata["campaign_id"], model.PaymentStatusCompleted)
		return &synthesized.ID, nil
	}

	fields := map[string]interface{}{}
	if payment.ProviderIntentID == nil {
		fields["provider_intent_id"] = intent.ID
	}
	if intent.LatestCharge != nil && intent.LatestCharge.ID != "" {
		fields["provider_charge_id"] = intent.LatestCharge.ID
	}
	if intent.PaymentMethod != nil && intent.PaymentMethod.ID != "" {
		fields["provider_payment_method_id"] = intent.PaymentMethod.ID
	}

	if len(fields) > 0 {
		if err := r.paymentRepo.UpdateFields(ctx, payment.ID, fields); err != nil {
			return nil, domainErrors.NewPersistenceError(eventID, eventType, err)
		}
	}

	moved, err := r.paymentRepo.TransitionStatus(ctx, payment.ID, model.PaymentStatusCompleted)
	if err != nil {
		return nil, domainErrors.NewPersistenceError(eventID, eventType, err)
	}

	if !moved {
		r.recordStatusConflict(ctx, eventID, eventType, payment, model.PaymentStatusCompleted)
		return &payment.ID, nil
	}

	r.logger.Info("Payment completed",
		zap.String("event_id", eventID),
		zap.String("payment_id", payment.ID),
		zap.String("intent_id", intent.ID),
		zap.Int64("amount_cents", payment.AmountCents))

	r.appendLog(ctx, &model.PaymentLog{
		PaymentID: &payment.ID,
		Status:    model.LogPaymentCompleted,
		Message:   "payment completed by provider",
		Metadata: model.JSONB{
			"event_id":  eventID,
			"intent_id": intent.ID,
		},
	})

	campaignID := intent.Metadata["campaign_id"]
	if campaignID == "" && payment.CampaignID != nil {
		campaignID = *payment.CampaignID
	}
	r.linkAndPublish(ctx, payment, campaignID, model.PaymentStatusCompleted)

	return &payment.ID, nil
}

// HandleIntentFailed processes a payment_intent.payment_failed event
func (r *IntentReconciler) HandleIntentFailed(ctx context.Context, eventID string, intent *stripe.PaymentIntent) (*string, error) {
	const eventType = "payment_intent.payment_failed"

	payment, err := r.resolver.ResolveForIntent(ctx, eventID, intent.ID, intent.Metadata["payment_id"], intent.ReceiptEmail)
	if err != nil {
		return nil, domainErrors.NewPersistenceError(eventID, eventType, err)
	}

	if payment == nil {
		// A failure for a record we never held is noted and acknowledged;
		// there is nothing worth synthesizing out of a failed attempt.
		r.logger.Warn("Payment failure for unknown record",
			zap.String("event_id", eventID),
			zap.String("intent_id", intent.ID))

		r.appendLog(ctx, &model.PaymentLog{
			Status:  model.LogPaymentNotFound,
			Message: "payment failure event could not be matched to any record",
			Metadata: model.JSONB{
				"event_id":  eventID,
				"intent_id": intent.ID,
			},
		})
		return nil, nil
	}

	fields := map[string]interface{}{}
	if payment.ProviderIntentID == nil {
		fields["provider_intent_id"] = intent.ID
	}
	if msg := failureMessage(intent); msg != "" {
		fields["failure_message"] = msg
	}

	if len(fields) > 0 {
		if err := r.paymentRepo.UpdateFields(ctx, payment.ID, fields); err != nil {
			return nil, domainErrors.NewPersistenceError(eventID, eventType, err)
		}
	}

	moved, err := r.paymentRepo.TransitionStatus(ctx, payment.ID, model.PaymentStatusFailed)
	if err != nil {
		return nil, domainErrors.NewPersistenceError(eventID, eventType, err)
	}

	if !moved {
		r.recordStatusConflict(ctx, eventID, eventType, payment, model.PaymentStatusFailed)
		return &payment.ID, nil
	}

	r.logger.Info("Payment failed",
		zap.String("event_id", eventID),
		zap.String("payment_id", payment.ID),
		zap.String("intent_id", intent.ID))

	r.appendLog(ctx, &model.PaymentLog{
		PaymentID: &payment.ID,
		Status:    model.LogPaymentFailed,
		Message:   "payment failed at provider",
		Metadata: model.JSONB{
			"event_id":        eventID,
			"intent_id":       intent.ID,
			"failure_message": failureMessage(intent),
		},
	})

	r.publishStatus(ctx, payment, model.PaymentStatusFailed)

	return &payment.ID, nil
}

// synthesizeCompletedPayment creates a completed record out of intent data
// when a success arrives for a payment this service never saw
func (r *IntentReconciler) synthesizeCompletedPayment(ctx context.Context, eventID string, intent *stripe.PaymentIntent) (*model.Payment, error) {
	const eventType = "payment_intent.succeeded"

	if intent.Amount <= 0 || intent.Currency == "" {
		r.appendLog(ctx, &model.PaymentLog{
			Status:  model.LogSynthesisFailed,
			Message: "payment intent lacks amount or currency, cannot synthesize payment",
			Metadata: model.JSONB{
				"event_id":  eventID,
				"intent_id": intent.ID,
			},
		})
		return nil, domainErrors.NewSynthesisFailedError(eventID, eventType, "intent has no amount or currency")
	}

	payment := &model.Payment{
		ID:              synthesizedID(intent.Metadata["payment_id"]),
		AmountCents:     intent.Amount,
		Currency:        string(intent.Currency),
		Status:          model.PaymentStatusCompleted,
		RecipientUserID: intent.Metadata["recipient_user_id"],
		Source:          model.PaymentSourceWebhook,
	}

	intentID := intent.ID
	payment.ProviderIntentID = &intentID
	if intent.LatestCharge != nil && intent.LatestCharge.ID != "" {
		chargeID := intent.LatestCharge.ID
		payment.ProviderChargeID = &chargeID
	}
	if intent.PaymentMethod != nil && intent.PaymentMethod.ID != "" {
		methodID := intent.PaymentMethod.ID
		payment.ProviderPaymentMethod = &methodID
	}
	if intent.ReceiptEmail != "" {
		email := intent.ReceiptEmail
		payment.DonorEmail = &email
	}
	if campaignID := intent.Metadata["campaign_id"]; campaignID != "" {
		payment.CampaignID = &campaignID
	}

	if err := r.paymentRepo.Create(ctx, payment); err != nil {
		return nil, domainErrors.NewPersistenceError(eventID, eventType, err)
	}

	r.logger.Warn("Synthesized completed payment record from intent",
		zap.String("event_id", eventID),
		zap.String("intent_id", intent.ID),
		zap.String("payment_id", payment.ID))

	r.appendLog(ctx, &model.PaymentLog{
		PaymentID: &payment.ID,
		Status:    model.LogPaymentCreated,
		Message:   "payment synthesized from payment intent event",
		Metadata: model.JSONB{
			"event_id":    eventID,
			"intent_id":   intent.ID,
			"synthesized": true,
		},
	})

	return payment, nil
}

func (r *IntentReconciler) recordStatusConflict(ctx context.Context, eventID, eventType string, payment *model.Payment, attempted model.PaymentStatus) {
	r.logger.Warn("Payment already in terminal status, transition skipped",
		zap.String("event_id", eventID),
		zap.String("event_type", eventType),
		zap.String("payment_id", payment.ID),
		zap.String("attempted_status", string(attempted)))

	r.appendLog(ctx, &model.PaymentLog{
		PaymentID: &payment.ID,
		Status:    model.LogStatusConflict,
		Message:   "status transition rejected, record already settled",
		Metadata: model.JSONB{
			"event_id":         eventID,
			"event_type":       eventType,
			"attempted_status": string(attempted),
		},
	})
}

func (r *IntentReconciler) linkAndPublish(ctx context.Context, payment *model.Payment, campaignID string, status model.PaymentStatus) {
	if campaignID != "" {
		if err := r.campaignLinker.LinkPayment(ctx, campaignID, payment.ID); err != nil {
			r.logger.Error("Failed to link payment to campaign",
				zap.String("payment_id", payment.ID),
				zap.String("campaign_id", campaignID),
				zap.Error(err))
		}
		payment.CampaignID = &campaignID
	}
	r.publishStatus(ctx, payment, status)
}

// publishStatus announces the terminal status best-effort; consumers that
// miss it fall back to polling.
func (r *IntentReconciler) publishStatus(ctx context.Context, payment *model.Payment, status model.PaymentStatus) {
	event := StatusEvent{
		PaymentID:  payment.ID,
		CampaignID: payment.CampaignID,
		Status:     string(status),
	}
	if err := r.publisher.PublishStatusChange(ctx, event); err != nil {
		r.logger.Warn("Failed to publish status change",
			zap.String("payment_id", payment.ID),
			zap.Error(err))
	}
}

func (r *IntentReconciler) appendLog(ctx context.Context, entry *model.PaymentLog) {
	if err := r.logRepo.Append(ctx, entry); err != nil {
		r.logger.Warn("Failed to append payment log entry",
			zap.String("status", entry.Status),
			zap.Error(err))
	}
}

func failureMessage(intent *stripe.PaymentIntent) string {
	if intent.LastPaymentError != nil && intent.LastPaymentError.Msg != "" {
		return intent.LastPaymentError.Msg
	}
	return ""
}
