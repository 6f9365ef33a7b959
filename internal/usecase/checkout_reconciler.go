package usecase

import (
	"context"

	"github.com/google/uuid"
	stripe "github.com/stripe/stripe-go/v79"
	"go.uber.org/zap"

	domainErrors "github.com/givingprint/payment-service/internal/domain/errors"
	"github.com/givingprint/payment-service/internal/domain/model"
	domainRepo "github.com/givingprint/payment-service/internal/domain/repository"
)

// CheckoutReconciler reconciles checkout.session.completed events against
// payment records. A resolved record is enriched with the provider keys the
// session carries and moved to processing; an unresolvable session is
// synthesized into a fresh record when the event holds enough data.
type CheckoutReconciler struct {
	paymentRepo    domainRepo.PaymentRepository
	logRepo        domainRepo.PaymentLogRepository
	resolver       *PaymentResolver
	campaignLinker *CampaignLinkService
	logger         *zap.Logger
}

// NewCheckoutReconciler creates a new checkout reconciler
func NewCheckoutReconciler(
	paymentRepo domainRepo.PaymentRepository,
	logRepo domainRepo.PaymentLogRepository,
	resolver *PaymentResolver,
	campaignLinker *CampaignLinkService,
	logger *zap.Logger,
) *CheckoutReconciler {
	return &CheckoutReconciler{
		paymentRepo:    paymentRepo,
		logRepo:        logRepo,
		resolver:       resolver,
		campaignLinker: campaignLinker,
		logger:         logger,
	}
}

// HandleSessionCompleted processes a completed checkout session. It returns
// the ID of the payment record the event was reconciled against.
func (r *CheckoutReconciler) HandleSessionCompleted(ctx context.Context, eventID string, session *stripe.CheckoutSession) (*string, error) {
	const eventType = "checkout.session.completed"

	metadataPaymentID := session.Metadata["payment_id"]
	campaignID := session.Metadata["campaign_id"]

	donorEmail := session.CustomerEmail
	if session.CustomerDetails != nil && session.CustomerDetails.Email != "" {
		donorEmail = session.CustomerDetails.Email
	}

	var intentID string
	if session.PaymentIntent != nil {
		intentID = session.PaymentIntent.ID
	}

	payment, err := r.resolver.ResolveForSession(ctx, eventID, metadataPaymentID, session.ID)
	if err != nil {
		return nil, domainErrors.NewPersistenceError(eventID, eventType, err)
	}

	if payment == nil {
		synthesized, synthErr := r.synthesizePayment(ctx, eventID, session, donorEmail, metadataPaymentID)
		if synthErr != nil {
			return nil, synthErr
		}
		payment = synthesized
	} else {
		fields := map[string]interface{}{}
		if payment.ProviderSessionID == nil {
			fields["provider_session_id"] = session.ID
		}
		if payment.ProviderIntentID == nil && intentID != "" {
			fields["provider_intent_id"] = intentID
		}
		if payment.DonorEmail == nil && donorEmail != "" {
			fields["donor_email"] = donorEmail
		}
		if payment.CampaignID == nil && campaignID != "" {
			fields["campaign_id"] = campaignID
		}

		if len(fields) > 0 {
			if err := r.paymentRepo.UpdateFields(ctx, payment.ID, fields); err != nil {
				return nil, domainErrors.NewPersistenceError(eventID, eventType, err)
			}
		}

		moved, err := r.paymentRepo.TransitionStatus(ctx, payment.ID, model.PaymentStatusProcessing)
		if err != nil {
			return nil, domainErrors.NewPersistenceError(eventID, eventType, err)
		}
		if !moved {
			// The intent events already carried the record past processing;
			// a late session event must not pull it back.
			r.logger.Debug("Checkout event arrived after payment left pending",
				zap.String("event_id", eventID),
				zap.String("payment_id", payment.ID),
				zap.String("status", string(payment.Status)))
		}

		r.appendLog(ctx, &model.PaymentLog{
			PaymentID: &payment.ID,
			Status:    model.LogPaymentUpdated,
			Message:   "payment enriched from completed checkout session",
			Metadata: model.JSONB{
				"event_id":   eventID,
				"session_id": session.ID,
			},
		})
	}

	if campaignID == "" && payment.CampaignID != nil {
		campaignID = *payment.CampaignID
	}
	if campaignID != "" {
		if err := r.campaignLinker.LinkPayment(ctx, campaignID, payment.ID); err != nil {
			return nil, domainErrors.NewPersistenceError(eventID, eventType, err)
		}
	}

	r.logger.Info("Checkout session reconciled",
		zap.String("event_id", eventID),
		zap.String("session_id", session.ID),
		zap.String("payment_id", payment.ID))

	return &payment.ID, nil
}

// synthesizePayment creates a payment record out of session data alone.
// Amount and currency are the hard floor: without them the record would be
// unusable and the event is rejected for manual review instead.
func (r *CheckoutReconciler) synthesizePayment(ctx context.Context, eventID string, session *stripe.CheckoutSession, donorEmail, metadataPaymentID string) (*model.Payment, error) {
	const eventType = "checkout.session.completed"

	if session.AmountTotal <= 0 || session.Currency == "" {
		r.appendLog(ctx, &model.PaymentLog{
			Status:  model.LogSynthesisFailed,
			Message: "checkout session lacks amount or currency, cannot synthesize payment",
			Metadata: model.JSONB{
				"event_id":   eventID,
				"session_id": session.ID,
			},
		})
		return nil, domainErrors.NewSynthesisFailedError(eventID, eventType, "session has no amount or currency")
	}

	payment := &model.Payment{
		ID:              synthesizedID(metadataPaymentID),
		AmountCents:     session.AmountTotal,
		Currency:        string(session.Currency),
		Status:          model.PaymentStatusProcessing,
		RecipientUserID: session.Metadata["recipient_user_id"],
		Source:          model.PaymentSourceWebhook,
	}

	sessionID := session.ID
	payment.ProviderSessionID = &sessionID
	if session.PaymentIntent != nil && session.PaymentIntent.ID != "" {
		intentID := session.PaymentIntent.ID
		payment.ProviderIntentID = &intentID
	}
	if donorEmail != "" {
		payment.DonorEmail = &donorEmail
	}
	if campaignID := session.Metadata["campaign_id"]; campaignID != "" {
		payment.CampaignID = &campaignID
	}
	if fingerprintID := session.Metadata["fingerprint_id"]; fingerprintID != "" {
		payment.FingerprintID = &fingerprintID
	}

	if err := r.paymentRepo.Create(ctx, payment); err != nil {
		return nil, domainErrors.NewPersistenceError(eventID, eventType, err)
	}

	r.logger.Warn("Synthesized payment record from checkout session",
		zap.String("event_id", eventID),
		zap.String("session_id", session.ID),
		zap.String("payment_id", payment.ID))

	r.appendLog(ctx, &model.PaymentLog{
		PaymentID: &payment.ID,
		Status:    model.LogPaymentCreated,
		Message:   "payment synthesized from checkout session event",
		Metadata: model.JSONB{
			"event_id":    eventID,
			"session_id":  session.ID,
			"synthesized": true,
		},
	})

	return payment, nil
}

func (r *CheckoutReconciler) appendLog(ctx context.Context, entry *model.PaymentLog) {
	if err := r.logRepo.Append(ctx, entry); err != nil {
		r.logger.Warn("Failed to append payment log entry",
			zap.String("status", entry.Status),
			zap.Error(err))
	}
}

// synthesizedID reuses the ID the event's metadata claims when it is
// well-formed, so later events for the same payment still correlate by
// metadata. Anything else gets a fresh ID.
func synthesizedID(metadataPaymentID string) string {
	if _, err := uuid.Parse(metadataPaymentID); err == nil {
		return metadataPaymentID
	}
	return uuid.New().String()
}
