package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	stripe "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
	"go.uber.org/zap"

	"github.com/givingprint/payment-service/internal/adapter/repository"
	domainErrors "github.com/givingprint/payment-service/internal/domain/errors"
	"github.com/givingprint/payment-service/internal/domain/model"
	"github.com/givingprint/payment-service/internal/usecase"
)

// eventHandlerFunc reconciles one parsed event and returns the payment
// record it settled against, if any.
type eventHandlerFunc func(ctx context.Context, eventID string, raw json.RawMessage) (*string, error)

// WebhookHandler receives provider webhook deliveries, verifies them,
// persists them and routes them to the matching reconciler through a typed
// dispatch table. Unknown event types are logged and acknowledged so the
// provider does not keep re-delivering them.
type WebhookHandler struct {
	logger             *zap.Logger
	webhookSecret      string
	webhookRepo        repository.WebhookRepository
	checkoutReconciler *usecase.CheckoutReconciler
	intentReconciler   *usecase.IntentReconciler
	handlers           map[stripe.EventType]eventHandlerFunc
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(
	logger *zap.Logger,
	webhookSecret string,
	webhookRepo repository.WebhookRepository,
	checkoutReconciler *usecase.CheckoutReconciler,
	intentReconciler *usecase.IntentReconciler,
) *WebhookHandler {
	h := &WebhookHandler{
		logger:             logger,
		webhookSecret:      webhookSecret,
		webhookRepo:        webhookRepo,
		checkoutReconciler: checkoutReconciler,
		intentReconciler:   intentReconciler,
	}

	h.handlers = map[stripe.EventType]eventHandlerFunc{
		stripe.EventTypeCheckoutSessionCompleted:   h.handleCheckoutSessionCompleted,
		stripe.EventTypePaymentIntentSucceeded:     h.handlePaymentIntentSucceeded,
		stripe.EventTypePaymentIntentPaymentFailed: h.handlePaymentIntentFailed,
	}

	return h
}

// HandleWebhook processes an inbound provider webhook delivery
func (h *WebhookHandler) HandleWebhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		h.logger.Error("Error reading request body", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Error reading request body"})
	}

	sig := c.Request().Header.Get("Stripe-Signature")

	event, err := webhook.ConstructEventWithOptions(
		body,
		sig,
		h.webhookSecret,
		webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		},
	)

	if err != nil {
		h.logger.Error("Webhook signature verification failed",
			zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Webhook signature verification failed",
		})
	}

	ctx := c.Request().Context()

	h.logger.Info("Webhook event received",
		zap.String("type", string(event.Type)),
		zap.String("id", event.ID),
		zap.Bool("livemode", event.Livemode),
		zap.Time("created", time.Unix(event.Created, 0)))

	created, err := h.webhookRepo.SaveEvent(ctx, event.ID, string(event.Type), event.Livemode, body)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to persist event"})
	}
	if !created {
		// Re-delivered event. Only fully processed events are safe to
		// short-circuit; a re-delivery of a failed or never-finished event is
		// the provider retry we solicited, so it must reach the reconcilers
		// (their conditional writes make reprocessing idempotent).
		existing, err := h.webhookRepo.GetEvent(ctx, event.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to load event"})
		}
		if existing == nil || existing.Status == model.WebhookStatusProcessed {
			h.logger.Info("Duplicate webhook delivery acknowledged",
				zap.String("id", event.ID),
				zap.String("type", string(event.Type)))
			return c.JSON(http.StatusOK, echo.Map{"received": true, "duplicate": true})
		}

		h.logger.Info("Reprocessing re-delivered webhook event",
			zap.String("id", event.ID),
			zap.String("type", string(event.Type)),
			zap.String("status", string(existing.Status)))
	}

	handler, ok := h.handlers[event.Type]
	if !ok {
		h.logger.Warn("Unhandled event type",
			zap.String("type", string(event.Type)),
			zap.String("id", event.ID))
		if err := h.webhookRepo.MarkProcessed(ctx, event.ID, nil); err != nil {
			h.logger.Error("Failed to mark event processed",
				zap.String("id", event.ID),
				zap.Error(err))
		}
		return c.JSON(http.StatusOK, echo.Map{"received": true})
	}

	paymentID, err := handler(ctx, event.ID, event.Data.Raw)
	if err != nil {
		if markErr := h.webhookRepo.MarkFailed(ctx, event.ID, err); markErr != nil {
			h.logger.Error("Failed to mark event failed",
				zap.String("id", event.ID),
				zap.Error(markErr))
		}

		var webhookErr *domainErrors.WebhookError
		if errors.As(err, &webhookErr) && !webhookErr.IsRetryable() {
			// Re-delivery cannot fix a malformed or unresolvable event, so
			// it is acknowledged and left in the store for manual review.
			h.logger.Warn("Event reconciliation failed, acknowledged for manual review",
				zap.String("id", event.ID),
				zap.String("error_type", webhookErr.Type),
				zap.Error(err))
			return c.JSON(http.StatusOK, echo.Map{"received": true})
		}

		h.logger.Error("Event reconciliation failed, requesting re-delivery",
			zap.String("id", event.ID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Event processing failed"})
	}

	if err := h.webhookRepo.MarkProcessed(ctx, event.ID, paymentID); err != nil {
		h.logger.Error("Failed to mark event processed",
			zap.String("id", event.ID),
			zap.Error(err))
	}

	return c.JSON(http.StatusOK, echo.Map{"received": true})
}

func (h *WebhookHandler) handleCheckoutSessionCompleted(ctx context.Context, eventID string, raw json.RawMessage) (*string, error) {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, domainErrors.NewSynthesisFailedError(eventID, "checkout.session.completed", "malformed session payload")
	}
	return h.checkoutReconciler.HandleSessionCompleted(ctx, eventID, &session)
}

func (h *WebhookHandler) handlePaymentIntentSucceeded(ctx context.Context, eventID string, raw json.RawMessage) (*string, error) {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(raw, &intent); err != nil {
		return nil, domainErrors.NewSynthesisFailedError(eventID, "payment_intent.succeeded", "malformed intent payload")
	}
	return h.intentReconciler.HandleIntentSucceeded(ctx, eventID, &intent)
}

func (h *WebhookHandler) handlePaymentIntentFailed(ctx context.Context, eventID string, raw json.RawMessage) (*string, error) {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(raw, &intent); err != nil {
		return nil, domainErrors.NewSynthesisFailedError(eventID, "payment_intent.payment_failed", "malformed intent payload")
	}
	return h.intentReconciler.HandleIntentFailed(ctx, eventID, &intent)
}
