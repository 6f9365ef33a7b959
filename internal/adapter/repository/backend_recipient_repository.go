package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	domainErrors "github.com/givingprint/payment-service/internal/domain/errors"
	domainRepo "github.com/givingprint/payment-service/internal/domain/repository"
	"go.uber.org/zap"
)

// BackendRecipientRepository resolves recipient profiles from the platform
// backend's REST API
type BackendRecipientRepository struct {
	client  *http.Client
	baseURL string
	apiKey  string
	logger  *zap.Logger
}

// NewBackendRecipientRepository creates a new backend recipient repository
func NewBackendRecipientRepository(
	baseURL string,
	apiKey string,
	logger *zap.Logger,
) domainRepo.RecipientRepository {
	return &BackendRecipientRepository{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
		apiKey:  apiKey,
		logger:  logger,
	}
}

type backendProfile struct {
	UserID               string `json:"user_id"`
	DisplayName          string `json:"display_name"`
	Published            bool   `json:"published"`
	DefaultFingerprintID string `json:"default_fingerprint_id"`
}

// GetProfile fetches a recipient profile by user ID
func (r *BackendRecipientRepository) GetProfile(ctx context.Context, userID string) (*domainRepo.RecipientProfile, error) {
	params := url.Values{}
	params.Add("user_id", fmt.Sprintf("eq.%s", userID))
	params.Add("select", "user_id,display_name,published,default_fingerprint_id")

	queryURL := fmt.Sprintf("%s/rest/v1/profiles?%s", r.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL, nil)
	if err != nil {
		return nil, domainErrors.NewBackendConnectionError(userID,
			fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("apikey", r.apiKey)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", r.apiKey))
	req.Header.Set("Content-Type", "application/json")

	requestStart := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Error("Backend profile request failed",
			zap.String("user_id", userID),
			zap.Duration("request_duration", time.Since(requestStart)),
			zap.Error(err))
		return nil, domainErrors.NewBackendConnectionError(userID,
			fmt.Errorf("http request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		r.logger.Warn("Backend API returned non-200 status",
			zap.String("user_id", userID),
			zap.Int("status_code", resp.StatusCode),
			zap.ByteString("response_body", body))

		if resp.StatusCode == http.StatusUnauthorized {
			return nil, domainErrors.NewBackendConnectionError(userID,
				fmt.Errorf("unauthorized access to backend API - check API key permissions"))
		}
		return nil, domainErrors.NewBackendConnectionError(userID,
			fmt.Errorf("backend API error: status %d", resp.StatusCode))
	}

	var profiles []backendProfile
	if err := json.NewDecoder(resp.Body).Decode(&profiles); err != nil {
		return nil, domainErrors.NewBackendConnectionError(userID,
			fmt.Errorf("failed to decode response: %w", err))
	}

	if len(profiles) == 0 {
		r.logger.Debug("Recipient profile not found",
			zap.String("user_id", userID))
		return nil, domainErrors.NewRecipientNotFoundError(userID)
	}

	if len(profiles) > 1 {
		r.logger.Warn("Multiple profiles found for recipient - using first one",
			zap.String("user_id", userID),
			zap.Int("profiles_found", len(profiles)))
	}

	p := profiles[0]

	r.logger.Debug("Recipient profile resolved",
		zap.String("user_id", userID),
		zap.Bool("published", p.Published),
		zap.Duration("request_duration", time.Since(requestStart)))

	return &domainRepo.RecipientProfile{
		UserID:               p.UserID,
		DisplayName:          p.DisplayName,
		Published:            p.Published,
		DefaultFingerprintID: p.DefaultFingerprintID,
	}, nil
}
