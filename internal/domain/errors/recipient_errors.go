package errors

import (
	"fmt"
)

// RecipientError represents errors raised while verifying a donation
// recipient against the hosted backend.
type RecipientError struct {
	Type    string
	Message string
	UserID  string
	Cause   error
}

func (e *RecipientError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (user: %s) - %v", e.Type, e.Message, e.UserID, e.Cause)
	}
	return fmt.Sprintf("%s: %s (user: %s)", e.Type, e.Message, e.UserID)
}

func (e *RecipientError) Unwrap() error {
	return e.Cause
}

// Recipient error types
const (
	ErrTypeRecipientNotFound       = "RECIPIENT_NOT_FOUND"
	ErrTypeProfileNotPublished     = "PROFILE_NOT_PUBLISHED"
	ErrTypeBackendConnectionFailed = "BACKEND_CONNECTION_FAILED"
)

// NewRecipientNotFoundError creates a recipient not found error
func NewRecipientNotFoundError(userID string) *RecipientError {
	return &RecipientError{
		Type:    ErrTypeRecipientNotFound,
		Message: "recipient profile not found",
		UserID:  userID,
	}
}

// NewProfileNotPublishedError creates an error for recipients whose profile
// is not accepting donations
func NewProfileNotPublishedError(userID string) *RecipientError {
	return &RecipientError{
		Type:    ErrTypeProfileNotPublished,
		Message: "recipient profile is not published",
		UserID:  userID,
	}
}

// NewBackendConnectionError creates an error for hosted backend failures
func NewBackendConnectionError(userID string, cause error) *RecipientError {
	return &RecipientError{
		Type:    ErrTypeBackendConnectionFailed,
		Message: "failed to reach hosted backend for recipient verification",
		UserID:  userID,
		Cause:   cause,
	}
}
