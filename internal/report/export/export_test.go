package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/smallbiznis/agrichar/internal/report/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleSummary() *domain.Summary {
	return &domain.Summary{
		OwnerID:     "farmer-a",
		GeneratedAt: time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC),
		Parcels: domain.ParcelSummary{
			Total:          2,
			Active:         1,
			AreaHectares:   7.5,
			ByVerification: map[string]int{"pending": 1, "verified": 1},
		},
		Biomass: domain.BiomassSummary{
			Records:   1,
			Harvested: 100,
			Remaining: 60,
			ByStatus:  map[string]int{"in_process": 1},
			ByCrop: []domain.CropTotal{
				{CropKey: "rice-husk", CropType: "Rice husk", Records: 1, Harvested: 100, Remaining: 60},
			},
		},
		Biochar: domain.BiocharSummary{
			Batches:         1,
			ByStatus:        map[string]int{"completed": 1},
			BiomassConsumed: 40,
			BiocharProduced: 12,
			AverageYield:    30,
		},
		Storage:      domain.StorageSummary{Records: 1, Stored: 12, ByStatus: map[string]int{"depleted": 1}},
		Applications: domain.ApplicationSummary{Records: 1, BiocharApplied: 12, ParcelsTreated: 1},
		Fertilizer:   domain.FertilizerSummary{ByStatus: map[string]int{}},
	}
}

func TestPDF(t *testing.T) {
	doc, err := PDF(sampleSummary())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")))

	_, err = PDF(nil)
	assert.Error(t, err)
}

func TestXLSXHasOneSheetPerLedger(t *testing.T) {
	doc, err := XLSX(sampleSummary())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(doc))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Parcels", "Biomass", "Biochar", "Storage", "Applications", "Fertilizer"}, f.GetSheetList())

	value, err := f.GetCellValue("Biochar", "B5")
	require.NoError(t, err)
	assert.Equal(t, "30", value)

	value, err = f.GetCellValue("Parcels", "A6")
	require.NoError(t, err)
	assert.Equal(t, "verification:pending", value)

	rows, err := f.GetRows("Biomass")
	require.NoError(t, err)
	last := rows[len(rows)-1]
	assert.Equal(t, []string{"rice-husk", "Rice husk", "1", "100", "60"}, last)
}
