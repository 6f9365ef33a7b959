package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/givingprint/payment-service/pkg/messaging"
)

// StatusChannel is the pub/sub channel terminal status changes are
// announced on.
const StatusChannel = "payments.status"

// StatusEvent is the message published when a payment reaches a terminal
// status. Consumers use it to refresh donor-facing views without polling.
type StatusEvent struct {
	PaymentID  string    `json:"payment_id"`
	CampaignID *string   `json:"campaign_id,omitempty"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// StatusPublisher announces payment status changes to interested consumers.
type StatusPublisher interface {
	PublishStatusChange(ctx context.Context, event StatusEvent) error
}

type redisStatusPublisher struct {
	client messaging.RedisClient
	logger *zap.Logger
}

// NewRedisStatusPublisher creates a Redis-backed status publisher
func NewRedisStatusPublisher(client messaging.RedisClient, logger *zap.Logger) StatusPublisher {
	return &redisStatusPublisher{
		client: client,
		logger: logger,
	}
}

// PublishStatusChange publishes the event on the payments status channel
func (p *redisStatusPublisher) PublishStatusChange(ctx context.Context, event StatusEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	if err := p.client.Publish(ctx, StatusChannel, event); err != nil {
		p.logger.Warn("Failed to publish payment status event",
			zap.String("payment_id", event.PaymentID),
			zap.String("status", event.Status),
			zap.Error(err))
		return err
	}

	return nil
}

// noopStatusPublisher is used when Redis is not configured.
type noopStatusPublisher struct{}

// NewNoopStatusPublisher creates a publisher that drops all events
func NewNoopStatusPublisher() StatusPublisher {
	return noopStatusPublisher{}
}

func (noopStatusPublisher) PublishStatusChange(ctx context.Context, event StatusEvent) error {
	return nil
}
