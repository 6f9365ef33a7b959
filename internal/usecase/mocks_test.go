package usecase_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/givingprint/payment-service/internal/domain/model"
	"github.com/givingprint/payment-service/internal/domain/provider"
	domainRepo "github.com/givingprint/payment-service/internal/domain/repository"
	"github.com/givingprint/payment-service/internal/usecase"
)

// MockPaymentRepository is a mock implementation of PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id string) (*model.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockPaymentRepository) GetBySessionID(ctx context.Context, sessionID string) (*model.Payment, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockPaymentRepository) GetByIntentID(ctx context.Context, intentID string) (*model.Payment, error) {
	args := m.Called(ctx, intentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockPaymentRepository) GetLatestPendingByEmail(ctx context.Context, email string) (*model.Payment, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockPaymentRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockPaymentRepository) TransitionStatus(ctx context.Context, id string, to model.PaymentStatus) (bool, error) {
	args := m.Called(ctx, id, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaymentRepository) ListByRecipient(ctx context.Context, recipientUserID string, limit, offset int) ([]*model.Payment, error) {
	args := m.Called(ctx, recipientUserID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Payment), args.Error(1)
}

func (m *MockPaymentRepository) ListCompletedByCampaign(ctx context.Context, campaignID string, limit int) ([]*model.Payment, error) {
	args := m.Called(ctx, campaignID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Payment), args.Error(1)
}

// MockPaymentLogRepository is a mock implementation of PaymentLogRepository
type MockPaymentLogRepository struct {
	mock.Mock
}

func (m *MockPaymentLogRepository) Append(ctx context.Context, entry *model.PaymentLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockPaymentLogRepository) ListByPayment(ctx context.Context, paymentID string, limit int) ([]*model.PaymentLog, error) {
	args := m.Called(ctx, paymentID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.PaymentLog), args.Error(1)
}

func (m *MockPaymentLogRepository) ListUnresolved(ctx context.Context, limit int) ([]*model.PaymentLog, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.PaymentLog), args.Error(1)
}

// MockCampaignPaymentRepository is a mock implementation of CampaignPaymentRepository
type MockCampaignPaymentRepository struct {
	mock.Mock
}

func (m *MockCampaignPaymentRepository) Link(ctx context.Context, campaignID, paymentID string) (bool, error) {
	args := m.Called(ctx, campaignID, paymentID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCampaignPaymentRepository) GetByPayment(ctx context.Context, paymentID string) ([]*model.CampaignPayment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.CampaignPayment), args.Error(1)
}

func (m *MockCampaignPaymentRepository) CountByCampaign(ctx context.Context, campaignID string) (int64, error) {
	args := m.Called(ctx, campaignID)
	return args.Get(0).(int64), args.Error(1)
}

// MockRecipientRepository is a mock implementation of RecipientRepository
type MockRecipientRepository struct {
	mock.Mock
}

func (m *MockRecipientRepository) GetProfile(ctx context.Context, userID string) (*domainRepo.RecipientProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainRepo.RecipientProfile), args.Error(1)
}

// MockFingerprintRepository is a mock implementation of FingerprintRepository
type MockFingerprintRepository struct {
	mock.Mock
}

func (m *MockFingerprintRepository) GetAllocations(ctx context.Context, fingerprintID string) ([]model.FingerprintAllocation, error) {
	args := m.Called(ctx, fingerprintID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.FingerprintAllocation), args.Error(1)
}

// MockCheckoutProvider is a mock implementation of CheckoutProvider
type MockCheckoutProvider struct {
	mock.Mock
}

func (m *MockCheckoutProvider) CreateDonationSession(ctx context.Context, params *provider.CheckoutParams) (*provider.CheckoutSession, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.CheckoutSession), args.Error(1)
}

// MockStatusPublisher is a mock implementation of StatusPublisher
type MockStatusPublisher struct {
	mock.Mock
}

func (m *MockStatusPublisher) PublishStatusChange(ctx context.Context, event usecase.StatusEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
