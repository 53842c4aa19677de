package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/agrichar/internal/clock"
	"github.com/smallbiznis/agrichar/internal/conservation"
	"github.com/smallbiznis/agrichar/internal/fertilizer/domain"
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
		log:       p.Log.Named("fertilizer.service"),
		repo:      p.Repo,
		genID:     p.GenID,
		clock:     clk,
		ledger:    p.Ledger,
		parcelSvc: p.ParcelSvc,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Inventory, error) {
	ownerID, ok := ownercontext.OwnerIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOwner
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	fertilizerType := strings.ToLower(strings.TrimSpace(req.FertilizerType))
	if fertilizerType == "" {
		return nil, domain.ErrInvalidType
	}
	quantity := conservation.NormalizeQuantity(req.Quantity)
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	unit, err := normalizeUnit(req.Unit)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	inventory := &domain.Inventory{
		ID:              s.genID.Generate().Int64(),
		OwnerID:         ownerID,
		Name:            name,
		FertilizerType:  fertilizerType,
		InitialQuantity: quantity,
		Quantity:        quantity,
		Unit:            unit,
		Status:          conservation.DeriveFertilizerStatus(s.ledger.Policy(), quantity, quantity, quantity),
		PurchasedAt:     utcOrNil(req),
		Supplier:        trimmedOrNil(req.Supplier),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Insert(ctx, s.db, inventory); err != nil {
		return nil, err
	}
	return inventory, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Inventory, error) {
	ownerID, ok := ownercontext.OwnerIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOwner
	}

	filter := domain.ListFilter{
		Status:         strings.ToLower(strings.TrimSpace(req.Status)),
		FertilizerType: strings.ToLower(strings.TrimSpace(req.FertilizerType)),
	}
	switch conservation.FertilizerStatus(filter.Status) {
	case "", conservation.FertilizerInStock, conservation.FertilizerLowStock, conservation.FertilizerOutOfStock:
	default:
		return nil, domain.ErrInvalidStatus
	}
	return s.repo.List(ctx, s.db, ownerID, filter)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Inventory, error) {
	ownerID, ok := ownercontext.OwnerIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOwner
	}
	inventoryID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, ownerID, inventoryID)
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Inventory, error) {
	ownerID, ok := ownercontext.OwnerIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOwner
	}
	inventoryID, err := parseID(req.ID, domain.ErrInvalidID)
	if err != nil {
		return nil, err
	}

	inventory, err := s.load(ctx, ownerID, inventoryID)
	if err != nil {
		return nil, err
	}
	previous := inventory.Quantity

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		inventory.Name = name
	}
	if req.FertilizerType != nil {
		fertilizerType := strings.ToLower(strings.TrimSpace(*req.FertilizerType))
		if fertilizerType == "" {
			return nil, domain.ErrInvalidType
		}
		inventory.FertilizerType = fertilizerType
	}
	if req.Quantity != nil {
		quantity := conservation.NormalizeQuantity(*req.Quantity)
		if quantity < 0 {
			return nil, domain.ErrInvalidQuantity
		}
		inventory.Quantity = quantity
	}
	if req.InitialQuantity != nil {
		initial := conservation.NormalizeQuantity(*req.InitialQuantity)
		if initial <= 0 {
			return nil, domain.ErrInvalidQuantity
		}
		inventory.InitialQuantity = initial
	}
	if req.Unit != nil {
		unit, err := normalizeUnit(*req.Unit)
		if err != nil {
			return nil, err
		}
		inventory.Unit = unit
	}
	if req.PurchasedAt != nil && !req.PurchasedAt.IsZero() {
		purchasedAt := req.PurchasedAt.UTC()
		inventory.PurchasedAt = &purchasedAt
	}
	if req.Supplier != nil {
		inventory.Supplier = trimmedOrNil(req.Supplier)
	}

	// a restock above the purchase amount becomes the new reference
	if inventory.Quantity > inventory.InitialQuantity {
		inventory.InitialQuantity = inventory.Quantity
	}

	inventory.Status = conservation.DeriveFertilizerStatus(s.ledger.Policy(), previous, inventory.Quantity, inventory.InitialQuantity)
	inventory.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, inventory); err != nil {
		return nil, err
	}
	return inventory, nil
}

// Delete removes the inventory. Its usages are kept.
func (s *Service) Delete(ctx context.Context, id string) error {
	ownerID, ok := ownercontext.OwnerIDFromContext(ctx)
	if !ok {
		return domain.ErrInvalidOwner
	}
	inventoryID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return err
	}

	affected, err := s.repo.Delete(ctx, s.db, ownerID, inventoryID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// RecordUsage inserts the usage and draws its quantity from the inventory in
// one transaction.
func (s *Service) RecordUsage(ctx context.Context, req domain.UsageRequest) (*domain.Usage, error) {
	ownerID, ok := ownercontext.OwnerIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOwner
	}
	inventoryID, err := parseID(req.InventoryID, domain.ErrInvalidID)
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
	usedAt := now
	if req.UsedAt != nil && !req.UsedAt.IsZero() {
		usedAt = req.UsedAt.UTC()
	}

	usage := &domain.Usage{
		ID:           s.genID.Generate().Int64(),
		OwnerID:      ownerID,
		InventoryID:  inventoryID,
		ParcelID:     parcelID,
		QuantityUsed: quantity,
		UsedAt:       usedAt,
		Notes:        trimmedOrNil(req.Notes),
		CreatedAt:    now,
	}

	var result *conservation.ConsumeResult
	err = s.ledger.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.InsertUsage(ctx, tx, usage); err != nil {
			return err
		}
		res, err := s.ledger.Consume(ctx, tx, conservation.ConsumeRequest{
			OwnerID:      ownerID,
			Source:       conservation.FertilizerSource,
			SourceID:     inventoryID,
			Quantity:     quantity,
			ConsumerType: conservation.ConsumerFertilizerUsage,
			ConsumerID:   usage.ID,
		})
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		if errors.Is(err, conservation.ErrSourceNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if result.Status != string(conservation.FertilizerInStock) {
		s.log.Info("fertilizer stock running low",
			zap.Int64("inventory_id", inventoryID),
			zap.Float64("quantity", result.Remaining),
			zap.String("status", result.Status),
		)
	}
	return usage, nil
}

func (s *Service) ListUsages(ctx context.Context, req domain.UsageListRequest) ([]domain.Usage, error) {
	ownerID, ok := ownercontext.OwnerIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOwner
	}

	var filter domain.UsageFilter
	if strings.TrimSpace(req.InventoryID) != "" {
		id, err := parseID(req.InventoryID, domain.ErrInvalidID)
		if err != nil {
			return nil, err
		}
		filter.InventoryID = id
	}
	if strings.TrimSpace(req.ParcelID) != "" {
		id, err := parseID(req.ParcelID, domain.ErrInvalidParcel)
		if err != nil {
			return nil, err
		}
		filter.ParcelID = id
	}
	return s.repo.ListUsages(ctx, s.db, ownerID, filter)
}

// ReconcileStatuses applies the current policy to every inventory that still
// holds stock. A percentage-of-previous policy has no previous value outside
// an update, so under it statuses are left as they are.
func (s *Service) ReconcileStatuses(ctx context.Context) (int, error) {
	policy := s.ledger.Policy()
	if policy.Mode == conservation.ThresholdPercentage && policy.Base == conservation.BasePrevious {
		s.log.Info("reconciliation skipped for percentage-of-previous policy")
		return 0, nil
	}

	changed := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items, err := s.repo.ListStocked(ctx, tx)
		if err != nil {
			return err
		}
		for _, item := range items {
			status := conservation.DeriveFertilizerStatus(policy, item.Quantity, item.Quantity, item.InitialQuantity)
			if status == item.Status {
				continue
			}
			if err := s.repo.UpdateStatus(ctx, tx, item.ID, string(status)); err != nil {
				return err
			}
			changed++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return changed, nil
}

func (s *Service) load(ctx context.Context, ownerID string, id int64) (*domain.Inventory, error) {
	inventory, err := s.repo.FindByID(ctx, s.db, ownerID, id)
	if err != nil {
		return nil, err
	}
	if inventory == nil {
		return nil, domain.ErrNotFound
	}
	return inventory, nil
}

func normalizeUnit(unit string) (string, error) {
	unit = strings.ToLower(strings.TrimSpace(unit))
	switch unit {
	case "":
		return domain.DefaultUnit, nil
	case "kg", "l":
		return unit, nil
	default:
		return "", domain.ErrInvalidUnit
	}
}

func utcOrNil(req domain.CreateRequest) *time.Time {
	if req.PurchasedAt == nil || req.PurchasedAt.IsZero() {
		return nil
	}
	t := req.PurchasedAt.UTC()
	return &t
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
