package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/givingprint/payment-service/internal/adapter/repository"
	"github.com/givingprint/payment-service/internal/config"
	domainRepo "github.com/givingprint/payment-service/internal/domain/repository"
)

// Repositories bundles every repository the service wires at startup
type Repositories struct {
	Payment         domainRepo.PaymentRepository
	Webhook         repository.WebhookRepository
	CampaignPayment domainRepo.CampaignPaymentRepository
	PaymentLog      domainRepo.PaymentLogRepository
	Fingerprint     domainRepo.FingerprintRepository
	Recipient       domainRepo.RecipientRepository
}

// NewRepositories creates all repositories backed by the given database
// connection and the backend REST API
func NewRepositories(db *gorm.DB, backend config.BackendConfig, logger *zap.Logger) *Repositories {
	return &Repositories{
		Payment:         repository.NewPaymentRepository(db, logger),
		Webhook:         repository.NewWebhookRepository(db, logger),
		CampaignPayment: repository.NewCampaignPaymentRepository(db, logger),
		PaymentLog:      repository.NewPaymentLogRepository(db, logger),
		Fingerprint:     repository.NewFingerprintRepository(db, logger),
		Recipient:       repository.NewBackendRecipientRepository(backend.ProjectURL, backend.APIKey, logger),
	}
}
