package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AllocationCategory is the dimension a fingerprint weight applies to.
type AllocationCategory string

const (
	AllocationCategoryCharity  AllocationCategory = "charity"
	AllocationCategoryCause    AllocationCategory = "cause"
	AllocationCategoryRegion   AllocationCategory = "region"
	AllocationCategoryMetadata AllocationCategory = "metadata"
)

// FingerprintAllocation is one percentage-weighted slice of a user's Giving
// Fingerprint. Rows are edited through the hosted backend; this service only
// reads them to validate donation targets.
type FingerprintAllocation struct {
	ID            int64              `gorm:"primaryKey;autoIncrement" json:"id"`
	FingerprintID string             `gorm:"size:36;not null;index" json:"fingerprint_id"`
	UserID        string             `gorm:"size:36;not null;index" json:"user_id"`
	Category      AllocationCategory `gorm:"size:20;not null" json:"category"`
	TargetID      string             `gorm:"size:64;not null" json:"target_id"`
	TargetName    string             `gorm:"size:255" json:"target_name"`
	Weight        decimal.Decimal    `gorm:"type:decimal(5,2);not null" json:"weight"`
	CreatedAt     time.Time          `gorm:"default:now()" json:"created_at"`
	UpdatedAt     time.Time          `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (FingerprintAllocation) TableName() string {
	return "fingerprint_allocations"
}

// ValidateAllocationWeights checks that every category present sums to exactly
// 100 percent. An empty slice is invalid: a fingerprint with no allocations
// cannot receive donations.
func ValidateAllocationWeights(allocations []FingerprintAllocation) error {
	if len(allocations) == 0 {
		return fmt.Errorf("fingerprint has no allocations")
	}

	hundred := decimal.NewFromInt(100)
	sums := make(map[AllocationCategory]decimal.Decimal)
	for _, a := range allocations {
		if a.Weight.IsNegative() {
			return fmt.Errorf("allocation %s/%s has negative weight %s", a.Category, a.TargetID, a.Weight.String())
		}
		sums[a.Category] = sums[a.Category].Add(a.Weight)
	}

	for category, sum := range sums {
		if !sum.Equal(hundred) {
			return fmt.Errorf("category %s weights sum to %s, expected 100", category, sum.String())
		}
	}

	return nil
}
