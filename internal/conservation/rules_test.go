package conservation

import (
	"errors"
	"testing"

	"github.com/smallbiznis/agrichar/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckAvailable(t *testing.T) {
	tests := []struct {
		name      string
		requested float64
		available float64
		want      error
	}{
		{name: "within remaining", requested: 40, available: 100},
		{name: "exactly remaining", requested: 100, available: 100},
		{name: "gram residue tolerated", requested: 0.3, available: 0.1 + 0.2},
		{name: "exceeds remaining", requested: 100.001, available: 100, want: ErrExceedsAvailable},
		{name: "zero", requested: 0, available: 100, want: ErrInvalidQuantity},
		{name: "negative", requested: -5, available: 100, want: ErrInvalidQuantity},
		{name: "below a gram", requested: 0.0004, available: 100, want: ErrInvalidQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckAvailable(tt.requested, tt.available)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNormalizeQuantity(t *testing.T) {
	assert.Equal(t, 0.3, NormalizeQuantity(0.1+0.2))
	assert.Equal(t, 12.346, NormalizeQuantity(12.3456))
	assert.Equal(t, 0.0, NormalizeQuantity(-0.0000001))
	assert.Equal(t, "12.5", FormatQuantity(12.500))
	assert.Equal(t, "40", FormatQuantity(40))
}

func TestDeriveBiomassStatus(t *testing.T) {
	assert.Equal(t, BiomassStored, DeriveBiomassStatus(100, 100))
	assert.Equal(t, BiomassInProcess, DeriveBiomassStatus(60, 100))
	assert.Equal(t, BiomassUsed, DeriveBiomassStatus(0, 100))
}

func TestDeriveStorageStatus(t *testing.T) {
	assert.Equal(t, StorageStored, DeriveStorageStatus(12, 12))
	assert.Equal(t, StorageInUse, DeriveStorageStatus(0.5, 12))
	assert.Equal(t, StorageDepleted, DeriveStorageStatus(0, 12))
}

func TestDeriveFertilizerStatus(t *testing.T) {
	percentOfOriginal := DefaultThresholdPolicy()
	percentOfPrevious := ThresholdPolicy{Mode: ThresholdPercentage, Percent: 20, Base: BasePrevious}
	fixed := ThresholdPolicy{Mode: ThresholdFixed, Floor: 10}

	tests := []struct {
		name     string
		policy   ThresholdPolicy
		previous float64
		current  float64
		original float64
		want     FertilizerStatus
	}{
		{name: "percentage of original above threshold", policy: percentOfOriginal, previous: 50, current: 10, original: 50, want: FertilizerInStock},
		{name: "percentage of original below threshold", policy: percentOfOriginal, previous: 50, current: 5, original: 50, want: FertilizerLowStock},
		{name: "percentage of previous", policy: percentOfPrevious, previous: 20, current: 5, original: 500, want: FertilizerInStock},
		{name: "percentage of previous below", policy: percentOfPrevious, previous: 50, current: 5, original: 500, want: FertilizerLowStock},
		{name: "fixed floor below", policy: fixed, previous: 50, current: 5, original: 50, want: FertilizerLowStock},
		{name: "fixed floor at floor", policy: fixed, previous: 50, current: 10, original: 50, want: FertilizerInStock},
		{name: "empty", policy: fixed, previous: 5, current: 0, original: 50, want: FertilizerOutOfStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveFertilizerStatus(tt.policy, tt.previous, tt.current, tt.original)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPolicyFromConfig(t *testing.T) {
	policy := PolicyFromConfig(config.LowStockConfig{
		Mode:  config.LowStockModeFixed,
		Floor: 7.5,
	})
	assert.Equal(t, ThresholdFixed, policy.Mode)
	assert.Equal(t, 7.5, policy.Threshold(100, 100))

	def := DefaultThresholdPolicy()
	assert.Equal(t, ThresholdPercentage, def.Mode)
	assert.Equal(t, 10.0, def.Threshold(100, 50))
}

func TestYieldPercentage(t *testing.T) {
	assert.Equal(t, 30.0, YieldPercentage(12, 40))
	assert.Equal(t, 0.0, YieldPercentage(0, 40))
	assert.Equal(t, 0.0, YieldPercentage(12, 0))
	assert.Equal(t, 125.0, YieldPercentage(50, 40))
	assert.Equal(t, 100.0, ClampPercent(YieldPercentage(50, 40)))
	assert.Equal(t, 0.0, ClampPercent(-3))
}

func TestMixtureRatio(t *testing.T) {
	assert.Equal(t, "12:3.5", MixtureRatio(12, 3.5))
	assert.Equal(t, "4.25:0", MixtureRatio(4.25, 0))
}

func TestExceedsAvailableError(t *testing.T) {
	var err error = &ExceedsAvailableError{Source: SourceBiomass, Requested: 60, Available: 40}

	require.True(t, errors.Is(err, ErrExceedsAvailable))
	assert.Equal(t, "requested 60 kg exceeds available 40 kg of biomass", err.Error())

	var exceeds *ExceedsAvailableError
	require.True(t, errors.As(err, &exceeds))
	assert.Equal(t, 40.0, exceeds.Available)
}
