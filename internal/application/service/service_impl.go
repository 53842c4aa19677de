package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/agrichar/internal/application/domain"
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
	Ledger    *conservation.Ledger
	ParcelSvc parceldomain.Service
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	repo      domain.Repository
	genID     *snowflake.Node
	clock     clock.Clock
	ledger    *conservation.Ledger
	parcelSvc parceldomain.Service
}

func New(p Params) domain.Service {
	clk := p.Clock
	if clk == nil {
		clk = clock.New()
	}
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("application.service"),
		repo:      p.Repo,
		genID:     p.GenID,
		clock:     clk,
		ledger:    p.Ledger,
		parcelSvc: p.ParcelSvc,
	}
}

// Create records an application and draws biochar from storage, plus
// fertilizer from inventory when blended. Either all three writes commit or
// none do.
func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Record, error) {
	ownerID, ok := ownercontext.OwnerIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOwner
	}

	storageID, err := parseID(req.StorageID, domain.ErrInvalidStorage)
	if err != nil {
		return nil, err
	}
	parcelID, err := parseID(req.ParcelID, domain.ErrInvalidParcel)
	if err != nil {
		return nil, err
	}
	quantity := conservation.NormalizeQuantity(req.QuantityUsed)
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	var fertilizerID *int64
	var fertilizerQuantity *float64
	if req.FertilizerID != nil && strings.TrimSpace(*req.FertilizerID) != "" {
		id, err := parseID(*req.FertilizerID, domain.ErrInvalidFertilizer)
		if err != nil {
			return nil, err
		}
		if req.FertilizerQuantity == nil {
			return nil, domain.ErrInvalidFertilizerQuantity
		}
		q := conservation.NormalizeQuantity(*req.FertilizerQuantity)
		if q <= 0 {
			return nil, domain.ErrInvalidFertilizerQuantity
		}
		fertilizerID = &id
		fertilizerQuantity = &q
	} else if req.FertilizerQuantity != nil && *req.FertilizerQuantity != 0 {
		return nil, domain.ErrInvalidFertilizer
	}

	parcel, err := s.parcelSvc.Lookup(ctx, ownerID, parcelID)
	if err != nil {
		if errors.Is(err, parceldomain.ErrNotFound) {
			return nil, domain.ErrInvalidParcel
		}
		return nil, err
	}
	if !parcel.IsActive() {
		return nil, parceldomain.ErrInactive
	}

	now := s.clock.Now()
	appliedAt := now
	if req.AppliedAt != nil && !req.AppliedAt.IsZero() {
		appliedAt = req.AppliedAt.UTC()
	}

	var blended float64
	if fertilizerQuantity != nil {
		blended = *fertilizerQuantity
	}
	record := &domain.Record{
		ID:                 s.genID.Generate().Int64(),
		OwnerID:            ownerID,
		StorageID:          storageID,
		ParcelID:           parcelID,
		QuantityUsed:       quantity,
		FertilizerID:       fertilizerID,
		FertilizerQuantity: fertilizerQuantity,
		MixtureRatio:       conservation.MixtureRatio(quantity, blended),
		Method:             trimmedOrNil(req.Method),
		AppliedAt:          appliedAt,
		Notes:              trimmedOrNil(req.Notes),
		CreatedAt:          now,
	}

	err = s.ledger.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, record); err != nil {
			return err
		}

		_, err := s.ledger.Consume(ctx, tx, conservation.ConsumeRequest{
			OwnerID:      ownerID,
			Source:       conservation.StorageSource,
			SourceID:     storageID,
			Quantity:     quantity,
			ConsumerType: conservation.ConsumerApplication,
			ConsumerID:   record.ID,
		})
		if errors.Is(err, conservation.ErrSourceNotFound) {
			return domain.ErrInvalidStorage
		}
		if err != nil {
			return err
		}

		if fertilizerID == nil {
			return nil
		}
		_, err = s.ledger.Consume(ctx, tx, conservation.ConsumeRequest{
			OwnerID:      ownerID,
			Source:       conservation.FertilizerSource,
			SourceID:     *fertilizerID,
			Quantity:     *fertilizerQuantity,
			ConsumerType: conservation.ConsumerApplication,
			ConsumerID:   record.ID,
		})
		if errors.Is(err, conservation.ErrSourceNotFound) {
			return domain.ErrInvalidFertilizer
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("biochar applied",
		zap.Int64("application_id", record.ID),
		zap.Int64("storage_id", storageID),
		zap.Int64("parcel_id", parcelID),
		zap.String("mixture_ratio", record.MixtureRatio),
	)
	return record, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Record, error) {
	ownerID, ok := ownercontext.OwnerIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOwner
	}

	var filter domain.ListFilter
	if strings.TrimSpace(req.StorageID) != "" {
		id, err := parseID(req.StorageID, domain.ErrInvalidStorage)
		if err != nil {
			return nil, err
		}
		filter.StorageID = id
	}
	if strings.TrimSpace(req.ParcelID) != "" {
		id, err := parseID(req.ParcelID, domain.ErrInvalidParcel)
		if err != nil {
			return nil, err
		}
		filter.ParcelID = id
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

	record, err := s.repo.FindByID(ctx, s.db, ownerID, recordID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, domain.ErrNotFound
	}
	return record, nil
}

// Delete removes the record. Storage and fertilizer stock are not restored.
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
