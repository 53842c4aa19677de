package service

import (
	"context"
	"fmt"
	"math"
	"sort"

	applicationdomain "github.com/smallbiznis/agrichar/internal/application/domain"
	biochardomain "github.com/smallbiznis/agrichar/internal/biochar/domain"
	biomassdomain "github.com/smallbiznis/agrichar/internal/biomass/domain"
	"github.com/smallbiznis/agrichar/internal/clock"
	"github.com/smallbiznis/agrichar/internal/conservation"
	fertilizerdomain "github.com/smallbiznis/agrichar/internal/fertilizer/domain"
	"github.com/smallbiznis/agrichar/internal/ownercontext"
	parceldomain "github.com/smallbiznis/agrichar/internal/parcel/domain"
	"github.com/smallbiznis/agrichar/internal/report/domain"
	"github.com/smallbiznis/agrichar/internal/report/export"
	storagedomain "github.com/smallbiznis/agrichar/internal/storage/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
}

func New(p Params) domain.Service {
	clk := p.Clock
	if clk == nil {
		clk = clock.New()
	}
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("report.service"),
		clock: clk,
	}
}

// Summary folds every ledger of the calling owner. Each ledger is loaded on
// its own goroutine and writes only its own section.
func (s *Service) Summary(ctx context.Context) (*domain.Summary, error) {
	ownerID, ok := ownercontext.OwnerIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOwner
	}

	summary := &domain.Summary{
		OwnerID:     ownerID,
		GeneratedAt: s.clock.Now(),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.foldParcels(gctx, ownerID, &summary.Parcels) })
	g.Go(func() error { return s.foldBiomass(gctx, ownerID, &summary.Biomass) })
	g.Go(func() error { return s.foldBiochar(gctx, ownerID, &summary.Biochar) })
	g.Go(func() error { return s.foldStorage(gctx, ownerID, &summary.Storage) })
	g.Go(func() error { return s.foldApplications(gctx, ownerID, &summary.Applications) })
	g.Go(func() error { return s.foldFertilizer(gctx, ownerID, &summary.Fertilizer) })
	if err := g.Wait(); err != nil {
		s.log.Error("summary failed", zap.String("owner_id", ownerID), zap.Error(err))
		return nil, err
	}
	return summary, nil
}

func (s *Service) SummaryPDF(ctx context.Context) ([]byte, error) {
	summary, err := s.Summary(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := export.PDF(summary)
	if err != nil {
		return nil, fmt.Errorf("render summary pdf: %w", err)
	}
	return doc, nil
}

func (s *Service) SummaryXLSX(ctx context.Context) ([]byte, error) {
	summary, err := s.Summary(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := export.XLSX(summary)
	if err != nil {
		return nil, fmt.Errorf("render summary xlsx: %w", err)
	}
	return doc, nil
}

func (s *Service) foldParcels(ctx context.Context, ownerID string, out *domain.ParcelSummary) error {
	var rows []parceldomain.Parcel
	if err := s.db.WithContext(ctx).
		Select("id", "status", "verification_status", "area_hectares", "cultivated_area_hectares").
		Where("owner_id = ?", ownerID).
		Find(&rows).Error; err != nil {
		return fmt.Errorf("load parcels: %w", err)
	}

	out.ByVerification = map[string]int{}
	for _, p := range rows {
		out.Total++
		if p.IsActive() {
			out.Active++
		}
		out.AreaHectares += p.AreaHectares
		if p.CultivatedAreaHectares != nil {
			out.CultivatedAreaHectares += *p.CultivatedAreaHectares
		}
		out.ByVerification[p.VerificationStatus]++
	}
	out.AreaHectares = conservation.NormalizeQuantity(out.AreaHectares)
	out.CultivatedAreaHectares = conservation.NormalizeQuantity(out.CultivatedAreaHectares)
	return nil
}

func (s *Service) foldBiomass(ctx context.Context, ownerID string, out *domain.BiomassSummary) error {
	var rows []biomassdomain.Record
	if err := s.db.WithContext(ctx).
		Select("id", "crop_type", "crop_key", "quantity", "remaining", "status").
		Where("owner_id = ?", ownerID).
		Order("crop_key ASC").
		Find(&rows).Error; err != nil {
		return fmt.Errorf("load biomass: %w", err)
	}

	out.ByStatus = map[string]int{}
	crops := map[string]*domain.CropTotal{}
	for _, r := range rows {
		out.Records++
		out.Harvested += r.Quantity
		out.Remaining += r.Remaining
		out.ByStatus[string(r.Status)]++

		crop, ok := crops[r.CropKey]
		if !ok {
			crop = &domain.CropTotal{CropKey: r.CropKey, CropType: r.CropType}
			crops[r.CropKey] = crop
		}
		crop.Records++
		crop.Harvested += r.Quantity
		crop.Remaining += r.Remaining
	}
	out.Harvested = conservation.NormalizeQuantity(out.Harvested)
	out.Remaining = conservation.NormalizeQuantity(out.Remaining)

	out.ByCrop = make([]domain.CropTotal, 0, len(crops))
	for _, crop := range crops {
		crop.Harvested = conservation.NormalizeQuantity(crop.Harvested)
		crop.Remaining = conservation.NormalizeQuantity(crop.Remaining)
		out.ByCrop = append(out.ByCrop, *crop)
	}
	sort.Slice(out.ByCrop, func(i, j int) bool {
		return out.ByCrop[i].CropKey < out.ByCrop[j].CropKey
	})
	return nil
}

func (s *Service) foldBiochar(ctx context.Context, ownerID string, out *domain.BiocharSummary) error {
	var rows []biochardomain.Batch
	if err := s.db.WithContext(ctx).
		Select("id", "status", "biomass_weight", "biochar_weight", "yield_percentage").
		Where("owner_id = ?", ownerID).
		Find(&rows).Error; err != nil {
		return fmt.Errorf("load biochar batches: %w", err)
	}

	out.ByStatus = map[string]int{}
	var yieldSum float64
	var completed int
	for _, b := range rows {
		out.Batches++
		out.ByStatus[string(b.Status)]++
		out.BiomassConsumed += b.BiomassWeight
		if b.BiocharWeight != nil {
			out.BiocharProduced += *b.BiocharWeight
		}
		if b.Status == biochardomain.StatusCompleted {
			completed++
			if b.YieldPercentage != nil {
				yieldSum += *b.YieldPercentage
			}
		}
	}
	out.BiomassConsumed = conservation.NormalizeQuantity(out.BiomassConsumed)
	out.BiocharProduced = conservation.NormalizeQuantity(out.BiocharProduced)
	if completed > 0 {
		out.AverageYield = roundPercent(yieldSum / float64(completed))
	}
	return nil
}

func (s *Service) foldStorage(ctx context.Context, ownerID string, out *domain.StorageSummary) error {
	var rows []storagedomain.Record
	if err := s.db.WithContext(ctx).
		Select("id", "quantity_stored", "remaining", "status").
		Where("owner_id = ?", ownerID).
		Find(&rows).Error; err != nil {
		return fmt.Errorf("load storage: %w", err)
	}

	out.ByStatus = map[string]int{}
	for _, r := range rows {
		out.Records++
		out.Stored += r.QuantityStored
		out.Remaining += r.Remaining
		out.ByStatus[string(r.Status)]++
	}
	out.Stored = conservation.NormalizeQuantity(out.Stored)
	out.Remaining = conservation.NormalizeQuantity(out.Remaining)
	return nil
}

func (s *Service) foldApplications(ctx context.Context, ownerID string, out *domain.ApplicationSummary) error {
	var rows []applicationdomain.Record
	if err := s.db.WithContext(ctx).
		Select("id", "parcel_id", "quantity_used", "fertilizer_quantity").
		Where("owner_id = ?", ownerID).
		Find(&rows).Error; err != nil {
		return fmt.Errorf("load applications: %w", err)
	}

	parcels := map[int64]struct{}{}
	for _, r := range rows {
		out.Records++
		out.BiocharApplied += r.QuantityUsed
		if r.FertilizerQuantity != nil {
			out.FertilizerApplied += *r.FertilizerQuantity
		}
		parcels[r.ParcelID] = struct{}{}
	}
	out.BiocharApplied = conservation.NormalizeQuantity(out.BiocharApplied)
	out.FertilizerApplied = conservation.NormalizeQuantity(out.FertilizerApplied)
	out.ParcelsTreated = len(parcels)
	return nil
}

func (s *Service) foldFertilizer(ctx context.Context, ownerID string, out *domain.FertilizerSummary) error {
	var inventories []fertilizerdomain.Inventory
	if err := s.db.WithContext(ctx).
		Select("id", "initial_quantity", "quantity", "status").
		Where("owner_id = ?", ownerID).
		Find(&inventories).Error; err != nil {
		return fmt.Errorf("load fertilizer inventories: %w", err)
	}

	var usages []fertilizerdomain.Usage
	if err := s.db.WithContext(ctx).
		Select("id", "quantity_used").
		Where("owner_id = ?", ownerID).
		Find(&usages).Error; err != nil {
		return fmt.Errorf("load fertilizer usages: %w", err)
	}

	out.ByStatus = map[string]int{}
	for _, inv := range inventories {
		out.Inventories++
		out.InStock += inv.Quantity
		out.Purchased += inv.InitialQuantity
		out.ByStatus[string(inv.Status)]++
	}
	for _, u := range usages {
		out.Used += u.QuantityUsed
	}
	out.InStock = conservation.NormalizeQuantity(out.InStock)
	out.Purchased = conservation.NormalizeQuantity(out.Purchased)
	out.Used = conservation.NormalizeQuantity(out.Used)
	return nil
}

func roundPercent(v float64) float64 {
	return math.Round(v*100) / 100
}
