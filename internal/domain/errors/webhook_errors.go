package errors

import (
	"fmt"
)

// WebhookError represents errors raised while reconciling a provider event.
// The Type decides how the dispatcher responds: only PERSISTENCE_FAILED is
// surfaced as a non-2xx so the provider re-delivers; everything else is
// logged and acknowledged.
type WebhookError struct {
	Type      string
	Message   string
	EventID   string
	EventType string
	Cause     error
}

func (e *WebhookError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (event: %s, type: %s) - %v",
			e.Type, e.Message, e.EventID, e.EventType, e.Cause)
	}
	return fmt.Sprintf("%s: %s (event: %s, type: %s)",
		e.Type, e.Message, e.EventID, e.EventType)
}

func (e *WebhookError) Unwrap() error {
	return e.Cause
}

// Webhook error types
const (
	ErrTypeSynthesisFailed   = "SYNTHESIS_FAILED"
	ErrTypePersistenceFailed = "PERSISTENCE_FAILED"
)

// NewSynthesisFailedError creates an error for events lacking the data
// needed to synthesize a payment record
func NewSynthesisFailedError(eventID, eventType, reason string) *WebhookError {
	return &WebhookError{
		Type:      ErrTypeSynthesisFailed,
		Message:   "cannot synthesize payment record: " + reason,
		EventID:   eventID,
		EventType: eventType,
	}
}

// NewPersistenceError creates an error for database failures during
// event handling
func NewPersistenceError(eventID, eventType string, cause error) *WebhookError {
	return &WebhookError{
		Type:      ErrTypePersistenceFailed,
		Message:   "persistence failure while handling event",
		EventID:   eventID,
		EventType: eventType,
		Cause:     cause,
	}
}

// IsRetryable reports whether the provider should re-deliver the event.
func (e *WebhookError) IsRetryable() bool {
	return e.Type == ErrTypePersistenceFailed
}
