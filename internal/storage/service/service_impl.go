package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	biochardomain "github.com/smallbiznis/agrichar/internal/biochar/domain"
	"github.com/smallbiznis/agrichar/internal/clock"
	"github.com/smallbiznis/agrichar/internal/conservation"
	"github.com/smallbiznis/agrichar/internal/ownercontext"
	"github.com/smallbiznis/agrichar/internal/storage/domain"
	dbpkg "github.com/smallbiznis/agrichar/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       domain.Repository
	BiocharSvc biochardomain.Service
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	repo       domain.Repository
	genID      *snowflake.Node
	clock      clock.Clock
	biocharSvc biochardomain.Service
}

func New(p Params) domain.Service {
	clk := p.Clock
	if clk == nil {
		clk = clock.New()
	}
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("storage.service"),
		repo:       p.Repo,
		genID:      p.GenID,
		clock:      clk,
		biocharSvc: p.BiocharSvc,
	}
}

// Create stores the full output of a completed batch. A batch can be stored
// once.
func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Record, error) {
	ownerID, ok := ownercontext.OwnerIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOwner
	}

	batchID, err := parseID(req.BatchID, domain.ErrInvalidBatch)
	if err != nil {
		return nil, err
	}
	location := strings.TrimSpace(req.Location)
	if location == "" {
		return nil, domain.ErrInvalidLocation
	}

	batch, err := s.biocharSvc.Lookup(ctx, ownerID, batchID)
	if err != nil {
		if errors.Is(err, biochardomain.ErrNotFound) {
			return nil, domain.ErrInvalidBatch
		}
		return nil, err
	}
	if batch.Status != biochardomain.StatusCompleted || batch.BiocharWeight == nil {
		return nil, domain.ErrBatchNotComplete
	}
	quantity := conservation.NormalizeQuantity(*batch.BiocharWeight)
	if quantity <= 0 {
		return nil, domain.ErrBatchEmpty
	}

	now := s.clock.Now()
	storedAt := now
	if req.StoredAt != nil && !req.StoredAt.IsZero() {
		storedAt = req.StoredAt.UTC()
	}

	record := &domain.Record{
		ID:             s.genID.Generate().Int64(),
		OwnerID:        ownerID,
		BatchID:        batchID,
		Location:       location,
		QuantityStored: quantity,
		Remaining:      quantity,
		Status:         conservation.DeriveStorageStatus(quantity, quantity),
		StoredAt:       storedAt,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Insert(ctx, s.db, record); err != nil {
		if dbpkg.IsDuplicateKeyErr(err) {
			return nil, domain.ErrAlreadyStored
		}
		return nil, err
	}

	s.log.Info("batch output stored",
		zap.Int64("storage_id", record.ID),
		zap.Int64("batch_id", batchID),
		zap.Float64("quantity_stored", quantity),
	)
	return record, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Record, error) {
	ownerID, ok := ownercontext.OwnerIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOwner
	}

	status := strings.ToLower(strings.TrimSpace(req.Status))
	switch conservation.StorageStatus(status) {
	case "", conservation.StorageStored, conservation.StorageInUse, conservation.StorageDepleted:
	default:
		return nil, domain.ErrInvalidStatus
	}
	return s.repo.List(ctx, s.db, ownerID, status)
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

// Update is a manual correction. Remaining may move up as well as down.
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

	if req.Location != nil {
		location := strings.TrimSpace(*req.Location)
		if location == "" {
			return nil, domain.ErrInvalidLocation
		}
		record.Location = location
	}
	if req.QuantityStored != nil {
		quantity := conservation.NormalizeQuantity(*req.QuantityStored)
		if quantity <= 0 {
			return nil, domain.ErrInvalidQuantity
		}
		record.QuantityStored = quantity
	}
	if req.Remaining != nil {
		record.Remaining = conservation.NormalizeQuantity(*req.Remaining)
	}
	if record.Remaining < 0 || record.Remaining > record.QuantityStored {
		return nil, domain.ErrInvalidRemaining
	}
	if req.StoredAt != nil && !req.StoredAt.IsZero() {
		record.StoredAt = req.StoredAt.UTC()
	}

	record.Status = conservation.DeriveStorageStatus(record.Remaining, record.QuantityStored)
	record.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, record); err != nil {
		return nil, err
	}
	return record, nil
}

// Delete removes the record. Applications drawn from it keep their quantities.
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

func parseID(id string, invalid error) (int64, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || parsed == 0 {
		return 0, invalid
	}
	return parsed.Int64(), nil
}
