package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func alloc(category AllocationCategory, target string, weight float64) FingerprintAllocation {
	return FingerprintAllocation{
		FingerprintID: "fp-1",
		UserID:        "user-1",
		Category:      category,
		TargetID:      target,
		Weight:        decimal.NewFromFloat(weight),
	}
}

func TestValidateAllocationWeights(t *testing.T) {
	tests := []struct {
		name        string
		allocations []FingerprintAllocation
		wantErr     string
	}{
		{
			name: "single category summing to 100",
			allocations: []FingerprintAllocation{
				alloc(AllocationCategoryCharity, "unicef", 60),
				alloc(AllocationCategoryCharity, "red-cross", 40),
			},
		},
		{
			name: "each category sums independently",
			allocations: []FingerprintAllocation{
				alloc(AllocationCategoryCharity, "unicef", 100),
				alloc(AllocationCategoryRegion, "east-africa", 70),
				alloc(AllocationCategoryRegion, "south-asia", 30),
			},
		},
		{
			name: "fractional weights summing exactly",
			allocations: []FingerprintAllocation{
				alloc(AllocationCategoryCause, "education", 33.34),
				alloc(AllocationCategoryCause, "health", 33.33),
				alloc(AllocationCategoryCause, "climate", 33.33),
			},
		},
		{
			name:        "empty fingerprint rejected",
			allocations: nil,
			wantErr:     "no allocations",
		},
		{
			name: "underweighted category rejected",
			allocations: []FingerprintAllocation{
				alloc(AllocationCategoryCharity, "unicef", 60),
				alloc(AllocationCategoryCharity, "red-cross", 30),
			},
			wantErr: "sum to 90",
		},
		{
			name: "overweighted category rejected",
			allocations: []FingerprintAllocation{
				alloc(AllocationCategoryCharity, "unicef", 60),
				alloc(AllocationCategoryCharity, "red-cross", 50),
			},
			wantErr: "sum to 110",
		},
		{
			name: "negative weight rejected",
			allocations: []FingerprintAllocation{
				alloc(AllocationCategoryCharity, "unicef", 120),
				alloc(AllocationCategoryCharity, "red-cross", -20),
			},
			wantErr: "negative weight",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAllocationWeights(tt.allocations)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
