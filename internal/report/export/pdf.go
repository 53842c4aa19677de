package export

import (
	"fmt"
	"sort"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/smallbiznis/agrichar/internal/conservation"
	"github.com/smallbiznis/agrichar/internal/report/domain"
)

var (
	headingText = props.Text{Size: 12, Style: fontstyle.Bold, Top: 3}
	labelText   = props.Text{Size: 9}
	valueText   = props.Text{Size: 9, Align: align.Right}
)

// PDF renders the summary as a single document with one section per ledger.
func PDF(summary *domain.Summary) ([]byte, error) {
	if summary == nil {
		return nil, fmt.Errorf("summary is required")
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, "Farm summary", props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)
	m.AddRow(8,
		text.NewCol(12, "Generated "+summary.GeneratedAt.Format("2006-01-02 15:04 MST"), props.Text{Size: 8}),
	)

	section(m, "Parcels", [][2]string{
		{"Parcels", fmt.Sprint(summary.Parcels.Total)},
		{"Active", fmt.Sprint(summary.Parcels.Active)},
		{"Area (ha)", qty(summary.Parcels.AreaHectares)},
		{"Cultivated area (ha)", qty(summary.Parcels.CultivatedAreaHectares)},
	})
	breakdown(m, "Verification", summary.Parcels.ByVerification)

	section(m, "Biomass", [][2]string{
		{"Records", fmt.Sprint(summary.Biomass.Records)},
		{"Harvested (kg)", qty(summary.Biomass.Harvested)},
		{"Remaining (kg)", qty(summary.Biomass.Remaining)},
	})
	for _, crop := range summary.Biomass.ByCrop {
		m.AddRow(6,
			col.New(1),
			text.NewCol(5, crop.CropType, labelText),
			text.NewCol(3, qty(crop.Harvested)+" harvested", valueText),
			text.NewCol(3, qty(crop.Remaining)+" remaining", valueText),
		)
	}
	breakdown(m, "Status", summary.Biomass.ByStatus)

	section(m, "Biochar production", [][2]string{
		{"Batches", fmt.Sprint(summary.Biochar.Batches)},
		{"Biomass consumed (kg)", qty(summary.Biochar.BiomassConsumed)},
		{"Biochar produced (kg)", qty(summary.Biochar.BiocharProduced)},
		{"Average yield (%)", qty(summary.Biochar.AverageYield)},
	})
	breakdown(m, "Status", summary.Biochar.ByStatus)

	section(m, "Storage", [][2]string{
		{"Records", fmt.Sprint(summary.Storage.Records)},
		{"Stored (kg)", qty(summary.Storage.Stored)},
		{"Remaining (kg)", qty(summary.Storage.Remaining)},
	})
	breakdown(m, "Status", summary.Storage.ByStatus)

	section(m, "Applications", [][2]string{
		{"Applications", fmt.Sprint(summary.Applications.Records)},
		{"Biochar applied (kg)", qty(summary.Applications.BiocharApplied)},
		{"Fertilizer applied", qty(summary.Applications.FertilizerApplied)},
		{"Parcels treated", fmt.Sprint(summary.Applications.ParcelsTreated)},
	})

	section(m, "Fertilizer", [][2]string{
		{"Inventories", fmt.Sprint(summary.Fertilizer.Inventories)},
		{"Purchased", qty(summary.Fertilizer.Purchased)},
		{"In stock", qty(summary.Fertilizer.InStock)},
		{"Used", qty(summary.Fertilizer.Used)},
	})
	breakdown(m, "Status", summary.Fertilizer.ByStatus)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

func section(m core.Maroto, title string, lines [][2]string) {
	m.AddRow(10, text.NewCol(12, title, headingText))
	for _, line := range lines {
		m.AddRow(6,
			text.NewCol(8, line[0], labelText),
			text.NewCol(4, line[1], valueText),
		)
	}
}

func breakdown(m core.Maroto, label string, counts map[string]int) {
	for _, key := range sortedKeys(counts) {
		m.AddRow(6,
			col.New(1),
			text.NewCol(7, label+": "+key, labelText),
			text.NewCol(4, fmt.Sprint(counts[key]), valueText),
		)
	}
}

func sortedKeys(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func qty(v float64) string {
	return conservation.FormatQuantity(v)
}
