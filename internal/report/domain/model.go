package domain

import "time"

// Summary is the per-owner rollup across every ledger.
type Summary struct {
	OwnerID      string             `json:"owner_id"`
	GeneratedAt  time.Time          `json:"generated_at"`
	Parcels      ParcelSummary      `json:"parcels"`
	Biomass      BiomassSummary     `json:"biomass"`
	Biochar      BiocharSummary     `json:"biochar"`
	Storage      StorageSummary     `json:"storage"`
	Applications ApplicationSummary `json:"applications"`
	Fertilizer   FertilizerSummary  `json:"fertilizer"`
}

type ParcelSummary struct {
	Total                  int            `json:"total"`
	Active                 int            `json:"active"`
	AreaHectares           float64        `json:"area_hectares"`
	CultivatedAreaHectares float64        `json:"cultivated_area_hectares"`
	ByVerification         map[string]int `json:"by_verification"`
}

type BiomassSummary struct {
	Records   int            `json:"records"`
	Harvested float64        `json:"harvested"`
	Remaining float64        `json:"remaining"`
	ByStatus  map[string]int `json:"by_status"`
	ByCrop    []CropTotal    `json:"by_crop"`
}

type CropTotal struct {
	CropKey   string  `json:"crop_key"`
	CropType  string  `json:"crop_type"`
	Records   int     `json:"records"`
	Harvested float64 `json:"harvested"`
	Remaining float64 `json:"remaining"`
}

type BiocharSummary struct {
	Batches         int            `json:"batches"`
	ByStatus        map[string]int `json:"by_status"`
	BiomassConsumed float64        `json:"biomass_consumed"`
	BiocharProduced float64        `json:"biochar_produced"`
	// AverageYield is the mean yield of completed batches, 0 when none.
	AverageYield float64 `json:"average_yield"`
}

type StorageSummary struct {
	Records   int            `json:"records"`
	Stored    float64        `json:"stored"`
	Remaining float64        `json:"remaining"`
	ByStatus  map[string]int `json:"by_status"`
}

type ApplicationSummary struct {
	Records           int     `json:"records"`
	BiocharApplied    float64 `json:"biochar_applied"`
	FertilizerApplied float64 `json:"fertilizer_applied"`
	ParcelsTreated    int     `json:"parcels_treated"`
}

type FertilizerSummary struct {
	Inventories int            `json:"inventories"`
	InStock     float64        `json:"in_stock"`
	Purchased   float64        `json:"purchased"`
	Used        float64        `json:"used"`
	ByStatus    map[string]int `json:"by_status"`
}
