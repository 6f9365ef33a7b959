package repository

import "context"

// RecipientProfile is the slice of the hosted backend's profile row this
// service cares about.
type RecipientProfile struct {
	UserID               string `json:"user_id"`
	DisplayName          string `json:"display_name"`
	Published            bool   `json:"published"`
	DefaultFingerprintID string `json:"default_fingerprint_id"`
}

// RecipientRepository verifies donation recipients against the hosted
// backend's REST API.
type RecipientRepository interface {
	GetProfile(ctx context.Context, userID string) (*RecipientProfile, error)
}
