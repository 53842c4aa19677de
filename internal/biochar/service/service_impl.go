package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	gonanoid "github.com/matoous/go-nanoid"
	"github.com/smallbiznis/agrichar/internal/biochar/domain"
	"github.com/smallbiznis/agrichar/internal/clock"
	"github.com/smallbiznis/agrichar/internal/conservation"
	"github.com/smallbiznis/agrichar/internal/ownercontext"
	dbpkg "github.com/smallbiznis/agrichar/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	batchNumberAlphabet = "0123456789ABCDEFGHJKLMNPQRSTUVWXYZ"
	batchNumberAttempts = 3
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Repo   domain.Repository
	Ledger *conservation.Ledger
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	repo   domain.Repository
	genID  *snowflake.Node
	clock  clock.Clock
	ledger *conservation.Ledger
}

func New(p Params) domain.Service {
	clk := p.Clock
	if clk == nil {
		clk = clock.New()
	}
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("biochar.service"),
		repo:   p.Repo,
		genID:  p.GenID,
		clock:  clk,
		ledger: p.Ledger,
	}
}

// Create starts a batch and draws its biomass weight from the source record
// in the same transaction.
func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Batch, error) {
	ownerID, ok := ownercontext.OwnerIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOwner
	}

	biomassID, err := parseID(req.BiomassID, domain.ErrInvalidBiomass)
	if err != nil {
		return nil, err
	}
	biomassWeight := conservation.NormalizeQuantity(req.BiomassWeight)
	if biomassWeight <= 0 {
		return nil, domain.ErrInvalidBiomassWeight
	}
	if err := validateTemperature(req.TemperatureC); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	productionDate := now
	if req.ProductionDate != nil && !req.ProductionDate.IsZero() {
		productionDate = req.ProductionDate.UTC()
	}

	for attempt := 1; ; attempt++ {
		batchNumber, err := newBatchNumber(productionDate)
		if err != nil {
			return nil, err
		}

		batch := &domain.Batch{
			ID:             s.genID.Generate().Int64(),
			OwnerID:        ownerID,
			BiomassID:      biomassID,
			BatchNumber:    batchNumber,
			BiomassWeight:  biomassWeight,
			KilnType:       trimmedOrNil(req.KilnType),
			TemperatureC:   req.TemperatureC,
			ProductionDate: productionDate,
			Status:         domain.StatusInProgress,
			CreatedAt:      now,
			UpdatedAt:      now,
		}

		err = s.ledger.Transaction(ctx, func(tx *gorm.DB) error {
			if err := s.repo.Insert(ctx, tx, batch); err != nil {
				return err
			}
			_, err := s.ledger.Consume(ctx, tx, conservation.ConsumeRequest{
				OwnerID:      ownerID,
				Source:       conservation.BiomassSource,
				SourceID:     biomassID,
				Quantity:     biomassWeight,
				ConsumerType: conservation.ConsumerBiocharBatch,
				ConsumerID:   batch.ID,
			})
			return err
		})
		switch {
		case err == nil:
			s.log.Info("biochar batch started",
				zap.Int64("batch_id", batch.ID),
				zap.String("batch_number", batch.BatchNumber),
				zap.Int64("biomass_id", biomassID),
				zap.Float64("biomass_weight", biomassWeight),
			)
			return batch, nil
		case errors.Is(err, conservation.ErrSourceNotFound):
			return nil, domain.ErrInvalidBiomass
		case dbpkg.IsDuplicateKeyErr(err) && attempt < batchNumberAttempts:
			s.log.Warn("batch number collision, retrying", zap.String("batch_number", batchNumber))
			continue
		default:
			return nil, err
		}
	}
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Batch, error) {
	ownerID, ok := ownercontext.OwnerIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOwner
	}

	filter := domain.ListFilter{
		Status: domain.Status(strings.ToLower(strings.TrimSpace(req.Status))),
	}
	switch filter.Status {
	case "", domain.StatusInProgress, domain.StatusCompleted, domain.StatusFailed:
	default:
		return nil, domain.ErrInvalidStatus
	}
	if strings.TrimSpace(req.BiomassID) != "" {
		biomassID, err := parseID(req.BiomassID, domain.ErrInvalidBiomass)
		if err != nil {
			return nil, err
		}
		filter.BiomassID = biomassID
	}

	return s.repo.List(ctx, s.db, ownerID, filter)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Batch, error) {
	ownerID, ok := ownercontext.OwnerIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOwner
	}
	batchID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, s.db, ownerID, batchID)
}

func (s *Service) Lookup(ctx context.Context, ownerID string, id int64) (*domain.Batch, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, domain.ErrInvalidOwner
	}
	if id == 0 {
		return nil, domain.ErrInvalidID
	}
	return s.load(ctx, s.db, ownerID, id)
}

// Complete records the batch output and its yield.
func (s *Service) Complete(ctx context.Context, req domain.CompleteRequest) (*domain.Batch, error) {
	if req.BiocharWeight == nil || *req.BiocharWeight < 0 {
		return nil, domain.ErrInvalidBiocharWeight
	}
	biocharWeight := conservation.NormalizeQuantity(*req.BiocharWeight)

	return s.transition(ctx, req.ID, func(batch *domain.Batch, now time.Time) {
		batch.Status = domain.StatusCompleted
		batch.BiocharWeight = &biocharWeight
		batch.YieldPercentage = yieldOf(batch.BiocharWeight, batch.BiomassWeight)
		batch.CompletedAt = &now
	})
}

func (s *Service) Fail(ctx context.Context, req domain.FailRequest) (*domain.Batch, error) {
	reason := trimmedOrNil(req.Reason)
	return s.transition(ctx, req.ID, func(batch *domain.Batch, _ time.Time) {
		batch.Status = domain.StatusFailed
		batch.FailureReason = reason
	})
}

func (s *Service) transition(ctx context.Context, id string, apply func(*domain.Batch, time.Time)) (*domain.Batch, error) {
	ownerID, ok := ownercontext.OwnerIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOwner
	}
	batchID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return nil, err
	}

	var batch *domain.Batch
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.load(ctx, tx, ownerID, batchID)
		if err != nil {
			return err
		}
		if current.Status.IsTerminal() {
			return domain.ErrInvalidTransition
		}

		now := s.clock.Now()
		from := current.Status
		apply(current, now)
		current.UpdatedAt = now
		if err := s.repo.Update(ctx, tx, current); err != nil {
			return err
		}

		s.log.Info("biochar batch transitioned",
			zap.Int64("batch_id", current.ID),
			zap.String("from", string(from)),
			zap.String("to", string(current.Status)),
		)
		batch = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Batch, error) {
	ownerID, ok := ownercontext.OwnerIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOwner
	}
	batchID, err := parseID(req.ID, domain.ErrInvalidID)
	if err != nil {
		return nil, err
	}

	batch, err := s.load(ctx, s.db, ownerID, batchID)
	if err != nil {
		return nil, err
	}

	if req.BiomassWeight != nil {
		weight := conservation.NormalizeQuantity(*req.BiomassWeight)
		if weight <= 0 {
			return nil, domain.ErrInvalidBiomassWeight
		}
		batch.BiomassWeight = weight
	}
	if req.BiocharWeight != nil {
		if batch.Status != domain.StatusCompleted {
			return nil, domain.ErrNotCompleted
		}
		if *req.BiocharWeight < 0 {
			return nil, domain.ErrInvalidBiocharWeight
		}
		weight := conservation.NormalizeQuantity(*req.BiocharWeight)
		batch.BiocharWeight = &weight
	}
	if req.KilnType != nil {
		batch.KilnType = trimmedOrNil(req.KilnType)
	}
	if req.TemperatureC != nil {
		if err := validateTemperature(req.TemperatureC); err != nil {
			return nil, err
		}
		batch.TemperatureC = req.TemperatureC
	}
	if req.ProductionDate != nil && !req.ProductionDate.IsZero() {
		batch.ProductionDate = req.ProductionDate.UTC()
	}

	if batch.Status == domain.StatusCompleted {
		batch.YieldPercentage = yieldOf(batch.BiocharWeight, batch.BiomassWeight)
	}
	batch.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, batch); err != nil {
		return nil, err
	}
	return batch, nil
}

// Delete removes the batch. The biomass it consumed is not returned.
func (s *Service) Delete(ctx context.Context, id string) error {
	ownerID, ok := ownercontext.OwnerIDFromContext(ctx)
	if !ok {
		return domain.ErrInvalidOwner
	}
	batchID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return err
	}

	affected, err := s.repo.Delete(ctx, s.db, ownerID, batchID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) load(ctx context.Context, db *gorm.DB, ownerID string, id int64) (*domain.Batch, error) {
	batch, err := s.repo.FindByID(ctx, db, ownerID, id)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, domain.ErrNotFound
	}
	return batch, nil
}

func yieldOf(biocharWeight *float64, biomassWeight float64) *float64 {
	if biocharWeight == nil {
		return nil
	}
	y := conservation.YieldPercentage(*biocharWeight, biomassWeight)
	return &y
}

func newBatchNumber(productionDate time.Time) (string, error) {
	suffix, err := gonanoid.Generate(batchNumberAlphabet, 6)
	if err != nil {
		return "", fmt.Errorf("generate batch number: %w", err)
	}
	return fmt.Sprintf("BC-%s-%s", productionDate.Format("20060102"), suffix), nil
}

func validateTemperature(value *float64) error {
	if value == nil {
		return nil
	}
	if *value <= 0 || *value > 2000 {
		return domain.ErrInvalidTemperature
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
