package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	domainErrors "github.com/givingprint/payment-service/internal/domain/errors"
	"go.uber.org/zap"
)

func TestBackendRecipientRepository_GetProfile(t *testing.T) {
	logger := zap.NewNop()

	tests := []struct {
		name               string
		userID             string
		mockServerResponse func(w http.ResponseWriter, r *http.Request)
		expectedPublished  bool
		expectedError      bool
		expectedErrorType  string
	}{
		{
			name:   "successful lookup",
			userID: "user-123",
			mockServerResponse: func(w http.ResponseWriter, r *http.Request) {
				// Verify request parameters
				assert.Equal(t, "/rest/v1/profiles", r.URL.Path)
				assert.Equal(t, "eq.user-123", r.URL.Query().Get("user_id"))

				// Verify headers
				assert.Equal(t, "test-api-key", r.Header.Get("apikey"))
				assert.Equal(t, "Bearer test-api-key", r.Header.Get("Authorization"))

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				w.Write([]byte(`[{"user_id":"user-123","display_name":"Ada","published":true,"default_fingerprint_id":"fp-1"}]`))
			},
			expectedPublished: true,
			expectedError:     false,
		},
		{
			name:   "profile not found - empty response",
			userID: "user-404",
			mockServerResponse: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				w.Write([]byte(`[]`))
			},
			expectedError:     true,
			expectedErrorType: domainErrors.ErrTypeRecipientNotFound,
		},
		{
			name:   "backend unauthorized",
			userID: "user-123",
			mockServerResponse: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error": "unauthorized"}`))
			},
			expectedError:     true,
			expectedErrorType: domainErrors.ErrTypeBackendConnectionFailed,
		},
		{
			name:   "backend server error",
			userID: "user-123",
			mockServerResponse: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"error": "internal server error"}`))
			},
			expectedError:     true,
			expectedErrorType: domainErrors.ErrTypeBackendConnectionFailed,
		},
		{
			name:   "invalid JSON response",
			userID: "user-123",
			mockServerResponse: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				w.Write([]byte(`{invalid json`))
			},
			expectedError:     true,
			expectedErrorType: domainErrors.ErrTypeBackendConnectionFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(tt.mockServerResponse))
			defer server.Close()

			repo := NewBackendRecipientRepository(server.URL, "test-api-key", logger)

			profile, err := repo.GetProfile(context.Background(), tt.userID)

			if tt.expectedError {
				assert.Error(t, err)
				assert.Nil(t, profile)

				var recipientErr *domainErrors.RecipientError
				if assert.ErrorAs(t, err, &recipientErr) {
					assert.Equal(t, tt.expectedErrorType, recipientErr.Type)
					assert.Equal(t, tt.userID, recipientErr.UserID)
				}
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, profile)
				assert.Equal(t, tt.userID, profile.UserID)
				assert.Equal(t, tt.expectedPublished, profile.Published)
				assert.Equal(t, "fp-1", profile.DefaultFingerprintID)
			}
		})
	}
}

func TestBackendRecipientRepository_RequestTimeout(t *testing.T) {
	logger := zap.NewNop()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	repo := &BackendRecipientRepository{
		client:  &http.Client{Timeout: time.Millisecond},
		baseURL: server.URL,
		apiKey:  "test-api-key",
		logger:  logger,
	}

	profile, err := repo.GetProfile(context.Background(), "user-123")

	assert.Error(t, err)
	assert.Nil(t, profile)

	var recipientErr *domainErrors.RecipientError
	if assert.ErrorAs(t, err, &recipientErr) {
		assert.Equal(t, domainErrors.ErrTypeBackendConnectionFailed, recipientErr.Type)
	}
}

func TestBackendRecipientRepository_ContextCancellation(t *testing.T) {
	logger := zap.NewNop()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	repo := NewBackendRecipientRepository(server.URL, "test-api-key", logger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	profile, err := repo.GetProfile(ctx, "user-123")

	assert.Error(t, err)
	assert.Nil(t, profile)

	var recipientErr *domainErrors.RecipientError
	if assert.ErrorAs(t, err, &recipientErr) {
		assert.Equal(t, domainErrors.ErrTypeBackendConnectionFailed, recipientErr.Type)
	}
}
