package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/givingprint/payment-service/internal/domain/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WebhookRepository handles webhook event storage and processing state
type WebhookRepository interface {
	// SaveEvent persists a new inbound event. It reports false when an event
	// with the same provider event ID already exists (duplicate delivery).
	SaveEvent(ctx context.Context, eventID, eventType string, livemode bool, data json.RawMessage) (bool, error)
	GetEvent(ctx context.Context, eventID string) (*model.WebhookEvent, error)
	MarkProcessed(ctx context.Context, eventID string, paymentID *string) error
	MarkFailed(ctx context.Context, eventID string, err error) error
	ListFailedEvents(ctx context.Context, limit int) ([]*model.WebhookEvent, error)
}

type webhookRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewWebhookRepository creates a new webhook repository
func NewWebhookRepository(db *gorm.DB, logger *zap.Logger) WebhookRepository {
	return &webhookRepository{
		db:     db,
		logger: logger,
	}
}

// SaveEvent saves a new webhook event
func (r *webhookRepository) SaveEvent(ctx context.Context, eventID, eventType string, livemode bool, data json.RawMessage) (bool, error) {
	// Parse created timestamp from event data
	var eventData map[string]interface{}
	if err := json.Unmarshal(data, &eventData); err != nil {
		r.logger.Warn("Failed to parse event data for timestamp",
			zap.String("event_id", eventID),
			zap.Error(err))
	}

	var providerCreatedAt *time.Time
	if created, ok := eventData["created"].(float64); ok {
		t := time.Unix(int64(created), 0)
		providerCreatedAt = &t
	}

	event := &model.WebhookEvent{
		ProviderEventID:   eventID,
		EventType:         eventType,
		Status:            model.WebhookStatusReceived,
		IsTestMode:        !livemode,
		RawPayload:        model.JSONB(eventData),
		ProviderCreatedAt: providerCreatedAt,
	}

	// Use ON CONFLICT to handle duplicate deliveries; zero rows affected
	// means the provider re-delivered an event we already hold.
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(event)

	if result.Error != nil {
		r.logger.Error("Failed to save webhook event",
			zap.String("event_id", eventID),
			zap.String("event_type", eventType),
			zap.Error(result.Error))
		return false, fmt.Errorf("failed to save webhook event: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

// GetEvent retrieves a webhook event by provider event ID
func (r *webhookRepository) GetEvent(ctx context.Context, eventID string) (*model.WebhookEvent, error) {
	var event model.WebhookEvent

	err := r.db.WithContext(ctx).
		Where("provider_event_id = ?", eventID).
		First(&event).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get webhook event",
			zap.String("event_id", eventID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get webhook event: %w", err)
	}

	return &event, nil
}

// MarkProcessed marks a webhook event as processed, recording the payment
// record it was reconciled against when known
func (r *webhookRepository) MarkProcessed(ctx context.Context, eventID string, paymentID *string) error {
	now := time.Now()

	updates := map[string]interface{}{
		"status":       model.WebhookStatusProcessed,
		"processed_at": &now,
	}
	if paymentID != nil {
		updates["payment_id"] = paymentID
	}

	result := r.db.WithContext(ctx).
		Model(&model.WebhookEvent{}).
		Where("provider_event_id = ?", eventID).
		Updates(updates)

	if result.Error != nil {
		r.logger.Error("Failed to mark webhook as processed",
			zap.String("event_id", eventID),
			zap.Error(result.Error))
		return fmt.Errorf("failed to mark webhook as processed: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("webhook event not found: %s", eventID)
	}

	return nil
}

// MarkFailed marks a webhook event as failed. No local retry schedule is
// kept; the provider's own retry mechanism re-delivers the event.
func (r *webhookRepository) MarkFailed(ctx context.Context, eventID string, cause error) error {
	errorMsg := cause.Error()

	result := r.db.WithContext(ctx).
		Model(&model.WebhookEvent{}).
		Where("provider_event_id = ?", eventID).
		Updates(map[string]interface{}{
			"status":     model.WebhookStatusFailed,
			"last_error": &errorMsg,
		})

	if result.Error != nil {
		r.logger.Error("Failed to mark webhook as failed",
			zap.String("event_id", eventID),
			zap.Error(result.Error))
		return fmt.Errorf("failed to mark webhook as failed: %w", result.Error)
	}

	return nil
}

// ListFailedEvents retrieves failed or never-processed events for manual
// review, oldest first
func (r *webhookRepository) ListFailedEvents(ctx context.Context, limit int) ([]*model.WebhookEvent, error) {
	var events []*model.WebhookEvent

	query := r.db.WithContext(ctx).
		Where("status IN (?, ?)", model.WebhookStatusReceived, model.WebhookStatusFailed).
		Order("received_at ASC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&events).Error; err != nil {
		r.logger.Error("Failed to list failed webhook events",
			zap.Error(err))
		return nil, fmt.Errorf("failed to list failed webhook events: %w", err)
	}

	return events, nil
}
