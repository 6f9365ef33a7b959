package repository

import (
	"context"

	"github.com/givingprint/payment-service/internal/domain/model"
)

// FingerprintRepository reads Giving Fingerprint allocations. Allocation
// editing happens through the hosted backend, never here.
type FingerprintRepository interface {
	GetAllocations(ctx context.Context, fingerprintID string) ([]model.FingerprintAllocation, error)
}
