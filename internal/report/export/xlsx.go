package export

import (
	"fmt"

	"github.com/smallbiznis/agrichar/internal/report/domain"
	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

type sheet struct {
	name string
	rows [][]any
}

// XLSX renders the summary as a workbook with one sheet per ledger.
func XLSX(summary *domain.Summary) ([]byte, error) {
	if summary == nil {
		return nil, fmt.Errorf("summary is required")
	}

	f := excelize.NewFile()
	defer f.Close()

	for _, sh := range sheets(summary) {
		if _, err := f.NewSheet(sh.name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", sh.name, err)
		}
		for i, row := range sh.rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				return nil, err
			}
			if err := f.SetSheetRow(sh.name, cell, &row); err != nil {
				return nil, fmt.Errorf("write sheet %s: %w", sh.name, err)
			}
		}
	}
	if err := f.DeleteSheet(defaultSheet); err != nil {
		return nil, err
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func sheets(s *domain.Summary) []sheet {
	parcels := sheet{name: "Parcels", rows: [][]any{
		{"metric", "value"},
		{"parcels", s.Parcels.Total},
		{"active", s.Parcels.Active},
		{"area_hectares", s.Parcels.AreaHectares},
		{"cultivated_area_hectares", s.Parcels.CultivatedAreaHectares},
	}}
	parcels.rows = appendCounts(parcels.rows, "verification", s.Parcels.ByVerification)

	biomass := sheet{name: "Biomass", rows: [][]any{
		{"metric", "value"},
		{"records", s.Biomass.Records},
		{"harvested_kg", s.Biomass.Harvested},
		{"remaining_kg", s.Biomass.Remaining},
	}}
	biomass.rows = appendCounts(biomass.rows, "status", s.Biomass.ByStatus)
	biomass.rows = append(biomass.rows, []any{}, []any{"crop_key", "crop_type", "records", "harvested_kg", "remaining_kg"})
	for _, crop := range s.Biomass.ByCrop {
		biomass.rows = append(biomass.rows, []any{crop.CropKey, crop.CropType, crop.Records, crop.Harvested, crop.Remaining})
	}

	biochar := sheet{name: "Biochar", rows: [][]any{
		{"metric", "value"},
		{"batches", s.Biochar.Batches},
		{"biomass_consumed_kg", s.Biochar.BiomassConsumed},
		{"biochar_produced_kg", s.Biochar.BiocharProduced},
		{"average_yield_pct", s.Biochar.AverageYield},
	}}
	biochar.rows = appendCounts(biochar.rows, "status", s.Biochar.ByStatus)

	storage := sheet{name: "Storage", rows: [][]any{
		{"metric", "value"},
		{"records", s.Storage.Records},
		{"stored_kg", s.Storage.Stored},
		{"remaining_kg", s.Storage.Remaining},
	}}
	storage.rows = appendCounts(storage.rows, "status", s.Storage.ByStatus)

	applications := sheet{name: "Applications", rows: [][]any{
		{"metric", "value"},
		{"applications", s.Applications.Records},
		{"biochar_applied_kg", s.Applications.BiocharApplied},
		{"fertilizer_applied", s.Applications.FertilizerApplied},
		{"parcels_treated", s.Applications.ParcelsTreated},
	}}

	fertilizer := sheet{name: "Fertilizer", rows: [][]any{
		{"metric", "value"},
		{"inventories", s.Fertilizer.Inventories},
		{"purchased", s.Fertilizer.Purchased},
		{"in_stock", s.Fertilizer.InStock},
		{"used", s.Fertilizer.Used},
	}}
	fertilizer.rows = appendCounts(fertilizer.rows, "status", s.Fertilizer.ByStatus)

	return []sheet{parcels, biomass, biochar, storage, applications, fertilizer}
}

func appendCounts(rows [][]any, prefix string, counts map[string]int) [][]any {
	for _, key := range sortedKeys(counts) {
		rows = append(rows, []any{prefix + ":" + key, counts[key]})
	}
	return rows
}
