package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/agrichar/internal/biomass/domain"
	"github.com/smallbiznis/agrichar/internal/clock"
	"github.com/smallbiznis/agrichar/internal/conservation"
	"github.com/smallbiznis/agrichar/internal/ownercontext"
	parceldomain "github.com/smallbiznis/agrichar/internal/parcel/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Repo      domain.Repository
	ParcelSvc parceldomain.Service
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	repo      domain.Repository
	genID     *snowflake.Node
	clock     clock.Clock
	parcelSvc parceldomain.Service
}

func New(p Params) domain.Service {
	clk := p.Clock
	if clk == nil {
		clk = clock.New()
	}
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("biomass.service"),
		repo:      p.Repo,
		genID:     p.GenID,
		clock:     clk,
		parcelSvc: p.ParcelSvc,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Record, error) {
	ownerID, ok := ownercontext.OwnerIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOwner
	}

	parcelID, err := parseID(req.ParcelID, domain.ErrInvalidParcel)
	if err != nil {
		return nil, err
	}
	if err := s.requireActiveParcel(ctx, ownerID, parcelID); err != nil {
		return nil, err
	}

	cropType, cropKey, err := normalizeCrop(req.CropType)
	if err != nil {
		return nil, err
	}

	quantity := conservation.NormalizeQuantity(req.Quantity)
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if err := validateMoisture(req.MoistureContent); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	harvestDate := now
	if req.HarvestDate != nil && !req.HarvestDate.IsZero() {
		harvestDate = req.HarvestDate.UTC()
	}

	record := &domain.Record{
		ID:              s.genID.Generate().Int64(),
		OwnerID:         ownerID,
		ParcelID:        parcelID,
		CropType:        cropType,
		CropKey:         cropKey,
		HarvestDate:     harvestDate,
		Quantity:        quantity,
		Remaining:       quantity,
		MoistureContent: req.MoistureContent,
		Status:          conservation.DeriveBiomassStatus(quantity, quantity),
		Notes:           trimmedOrNil(req.Notes),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Insert(ctx, s.db, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Record, error) {
	ownerID, ok := ownercontext.OwnerIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOwner
	}

	filter := domain.ListFilter{
		Status: strings.ToLower(strings.TrimSpace(req.Status)),
	}
	if strings.TrimSpace(req.ParcelID) != "" {
		parcelID, err := parseID(req.ParcelID, domain.ErrInvalidParcel)
		if err != nil {
			return nil, err
		}
		filter.ParcelID = parcelID
	}
	switch conservation.BiomassStatus(filter.Status) {
	case "", conservation.BiomassStored, conservation.BiomassInProcess, conservation.BiomassUsed:
	default:
		return nil, domain.ErrInvalidStatus
	}
	if crop := strings.TrimSpace(req.CropType); crop != "" {
		filter.CropKey = slug.Make(crop)
	}

	return s.repo.List(ctx, s.db, ownerID, filter)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Record, error) {
	ownerID, ok := ownercontext.OwnerIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOwner
	}
	recordID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, ownerID, recordID)
}

// Update applies a direct edit. Changing Quantity shifts Remaining by the same
// amount so the consumed portion is preserved, unless Remaining is also given.
func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Record, error) {
	ownerID, ok := ownercontext.OwnerIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOwner
	}
	recordID, err := parseID(req.ID, domain.ErrInvalidID)
	if err != nil {
		return nil, err
	}

	record, err := s.load(ctx, ownerID, recordID)
	if err != nil {
		return nil, err
	}

	if req.CropType != nil {
		cropType, cropKey, err := normalizeCrop(*req.CropType)
		if err != nil {
			return nil, err
		}
		record.CropType = cropType
		record.CropKey = cropKey
	}
	if req.HarvestDate != nil && !req.HarvestDate.IsZero() {
		record.HarvestDate = req.HarvestDate.UTC()
	}
	if req.Quantity != nil {
		quantity := conservation.NormalizeQuantity(*req.Quantity)
		if quantity <= 0 {
			return nil, domain.ErrInvalidQuantity
		}
		consumed := record.Quantity - record.Remaining
		record.Quantity = quantity
		record.Remaining = conservation.NormalizeQuantity(quantity - consumed)
		if record.Remaining < 0 {
			record.Remaining = 0
		}
	}
	if req.Remaining != nil {
		record.Remaining = conservation.NormalizeQuantity(*req.Remaining)
	}
	if record.Remaining < 0 || record.Remaining > record.Quantity {
		return nil, domain.ErrInvalidRemaining
	}
	if req.MoistureContent != nil {
		if err := validateMoisture(req.MoistureContent); err != nil {
			return nil, err
		}
		record.MoistureContent = req.MoistureContent
	}
	if req.Notes != nil {
		record.Notes = trimmedOrNil(req.Notes)
	}

	record.Status = conservation.DeriveBiomassStatus(record.Remaining, record.Quantity)
	record.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, record); err != nil {
		return nil, err
	}
	return record, nil
}

// Delete removes the record. Batches produced from it keep their weights.
func (s *Service) Delete(ctx context.Context, id string) error {
	ownerID, ok := ownercontext.OwnerIDFromContext(ctx)
	if !ok {
		return domain.ErrInvalidOwner
	}
	recordID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return err
	}

	affected, err := s.repo.Delete(ctx, s.db, ownerID, recordID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) requireActiveParcel(ctx context.Context, ownerID string, parcelID int64) error {
	parcel, err := s.parcelSvc.Lookup(ctx, ownerID, parcelID)
	if err != nil {
		if errors.Is(err, parceldomain.ErrNotFound) {
			return domain.ErrInvalidParcel
		}
		return err
	}
	if !parcel.IsActive() {
		return parceldomain.ErrInactive
	}
	return nil
}

func (s *Service) load(ctx context.Context, ownerID string, id int64) (*domain.Record, error) {
	record, err := s.repo.FindByID(ctx, s.db, ownerID, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, domain.ErrNotFound
	}
	return record, nil
}

func normalizeCrop(value string) (string, string, error) {
	cropType := strings.TrimSpace(value)
	if cropType == "" {
		return "", "", domain.ErrInvalidCropType
	}
	cropKey := slug.Make(cropType)
	if cropKey == "" {
		return "", "", domain.ErrInvalidCropType
	}
	return cropType, cropKey, nil
}

func validateMoisture(value *float64) error {
	if value == nil {
		return nil
	}
	if *value < 0 || *value > 100 {
		return domain.ErrInvalidMoisture
	}
	return nil
}

func parseID(id string, invalid error) (int64, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || parsed == 0 {
		return 0, invalid
	}
	return parsed.Int64(), nil
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
