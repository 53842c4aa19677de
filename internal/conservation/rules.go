package conservation

import (
	"math"
	"strconv"

	"github.com/smallbiznis/agrichar/internal/config"
)

// Epsilon absorbs floating point residue left by SQL-side subtraction.
const Epsilon = 1e-9

type BiomassStatus string

const (
	BiomassStored    BiomassStatus = "stored"
	BiomassInProcess BiomassStatus = "in_process"
	BiomassUsed      BiomassStatus = "used"
)

type StorageStatus string

const (
	StorageStored   StorageStatus = "stored"
	StorageInUse    StorageStatus = "in_use"
	StorageDepleted StorageStatus = "depleted"
)

type FertilizerStatus string

const (
	FertilizerInStock    FertilizerStatus = "in_stock"
	FertilizerLowStock   FertilizerStatus = "low_stock"
	FertilizerOutOfStock FertilizerStatus = "out_of_stock"
)

// NormalizeQuantity rounds a kilogram amount to gram precision.
func NormalizeQuantity(q float64) float64 {
	if math.IsNaN(q) || math.IsInf(q, 0) {
		return 0
	}
	rounded := math.Round(q*1000) / 1000
	if math.Abs(rounded) < Epsilon {
		return 0
	}
	return rounded
}

// FormatQuantity renders q without trailing zeros.
func FormatQuantity(q float64) string {
	return strconv.FormatFloat(NormalizeQuantity(q), 'f', -1, 64)
}

// CheckAvailable accepts requested when 0 < requested <= available.
func CheckAvailable(requested, available float64) error {
	requested = NormalizeQuantity(requested)
	if requested <= 0 {
		return ErrInvalidQuantity
	}
	if requested > NormalizeQuantity(available)+Epsilon {
		return ErrExceedsAvailable
	}
	return nil
}

func DeriveBiomassStatus(remaining, quantity float64) BiomassStatus {
	switch {
	case remaining <= Epsilon:
		return BiomassUsed
	case remaining < quantity-Epsilon:
		return BiomassInProcess
	default:
		return BiomassStored
	}
}

func DeriveStorageStatus(remaining, quantityStored float64) StorageStatus {
	switch {
	case remaining <= Epsilon:
		return StorageDepleted
	case remaining < quantityStored-Epsilon:
		return StorageInUse
	default:
		return StorageStored
	}
}

type ThresholdMode string

const (
	ThresholdPercentage ThresholdMode = config.LowStockModePercentage
	ThresholdFixed      ThresholdMode = config.LowStockModeFixed
)

type ThresholdBase string

const (
	BaseOriginal ThresholdBase = config.LowStockBaseOriginal
	BasePrevious ThresholdBase = config.LowStockBasePrevious
)

// ThresholdPolicy decides where low_stock begins for a fertilizer inventory.
type ThresholdPolicy struct {
	Mode    ThresholdMode
	Percent float64
	Base    ThresholdBase
	Floor   float64
}

func DefaultThresholdPolicy() ThresholdPolicy {
	return PolicyFromConfig(config.DefaultInventoryConfig().LowStock)
}

func PolicyFromConfig(cfg config.LowStockConfig) ThresholdPolicy {
	return ThresholdPolicy{
		Mode:    ThresholdMode(cfg.Mode),
		Percent: cfg.Percent,
		Base:    ThresholdBase(cfg.Base),
		Floor:   cfg.Floor,
	}
}

// Threshold returns the quantity below which stock counts as low.
func (p ThresholdPolicy) Threshold(previous, original float64) float64 {
	if p.Mode == ThresholdFixed {
		return p.Floor
	}
	base := original
	if p.Base == BasePrevious {
		base = previous
	}
	return base * p.Percent / 100
}

// DeriveFertilizerStatus classifies current stock. previous is the quantity
// before the triggering update and original the purchase quantity.
func DeriveFertilizerStatus(policy ThresholdPolicy, previous, current, original float64) FertilizerStatus {
	switch {
	case current <= Epsilon:
		return FertilizerOutOfStock
	case current < policy.Threshold(previous, original)-Epsilon:
		return FertilizerLowStock
	default:
		return FertilizerInStock
	}
}

// YieldPercentage is biochar output over biomass input, in percent. It is not
// clamped: a value above 100 is representable.
func YieldPercentage(biocharWeight, biomassWeight float64) float64 {
	if biomassWeight <= 0 || biocharWeight <= 0 {
		return 0
	}
	return biocharWeight * 100 / biomassWeight
}

// ClampPercent bounds v to the 0–100 display range.
func ClampPercent(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

// MixtureRatio renders "biochar:fertilizer" for display.
func MixtureRatio(biocharQuantity, fertilizerQuantity float64) string {
	return FormatQuantity(biocharQuantity) + ":" + FormatQuantity(fertilizerQuantity)
}
