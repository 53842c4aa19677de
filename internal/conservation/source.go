package conservation

// SourceKind names a ledger that downstream stages consume from.
type SourceKind string

const (
	SourceBiomass    SourceKind = "biomass"
	SourceStorage    SourceKind = "storage"
	SourceFertilizer SourceKind = "fertilizer"
)

// ConsumerKind names the record whose creation consumes a source.
type ConsumerKind string

const (
	ConsumerBiocharBatch    ConsumerKind = "biochar_batch"
	ConsumerApplication     ConsumerKind = "application"
	ConsumerFertilizerUsage ConsumerKind = "fertilizer_usage"
)

// Source describes where a ledger keeps its live and capacity quantities and
// how its status follows from them.
type Source struct {
	Kind            SourceKind
	Table           string
	RemainingColumn string
	CapacityColumn  string
	derive          func(policy ThresholdPolicy, previous, remaining, capacity float64) string
}

var (
	BiomassSource = Source{
		Kind:            SourceBiomass,
		Table:           "biomass_records",
		RemainingColumn: "remaining",
		CapacityColumn:  "quantity",
		derive: func(_ ThresholdPolicy, _, remaining, capacity float64) string {
			return string(DeriveBiomassStatus(remaining, capacity))
		},
	}
	StorageSource = Source{
		Kind:            SourceStorage,
		Table:           "storage_records",
		RemainingColumn: "remaining",
		CapacityColumn:  "quantity_stored",
		derive: func(_ ThresholdPolicy, _, remaining, capacity float64) string {
			return string(DeriveStorageStatus(remaining, capacity))
		},
	}
	FertilizerSource = Source{
		Kind:            SourceFertilizer,
		Table:           "fertilizer_inventories",
		RemainingColumn: "quantity",
		CapacityColumn:  "initial_quantity",
		derive: func(policy ThresholdPolicy, previous, remaining, capacity float64) string {
			return string(DeriveFertilizerStatus(policy, previous, remaining, capacity))
		},
	}
)

// DeriveStatus applies the source's status rule.
func (s Source) DeriveStatus(policy ThresholdPolicy, previous, remaining, capacity float64) string {
	if s.derive == nil {
		return ""
	}
	return s.derive(policy, previous, remaining, capacity)
}

func (s Source) valid() bool {
	return s.Kind != "" && s.Table != "" && s.RemainingColumn != "" && s.CapacityColumn != "" && s.derive != nil
}
