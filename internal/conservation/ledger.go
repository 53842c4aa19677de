package conservation

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/agrichar/internal/clock"
	"github.com/smallbiznis/agrichar/internal/config"
	obsmetrics "github.com/smallbiznis/agrichar/internal/observability/metrics"
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
	Inventory  *config.InventoryConfigHolder `optional:"true"`
	ObsMetrics *obsmetrics.Metrics           `optional:"true"`
}

// Ledger performs check-and-decrement against a source record. Every call
// runs on the caller's transaction so the consumer insert, the decrement, the
// status update and the movement line commit or roll back together.
type Ledger struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	inventory  *config.InventoryConfigHolder
	obsMetrics *obsmetrics.Metrics
}

func NewLedger(p Params) *Ledger {
	clk := p.Clock
	if clk == nil {
		clk = clock.New()
	}
	return &Ledger{
		db:         p.DB,
		log:        p.Log.Named("conservation.ledger"),
		genID:      p.GenID,
		clock:      clk,
		inventory:  p.Inventory,
		obsMetrics: p.ObsMetrics,
	}
}

type ConsumeRequest struct {
	OwnerID      string
	Source       Source
	SourceID     int64
	Quantity     float64
	ConsumerType ConsumerKind
	ConsumerID   int64
}

type ConsumeResult struct {
	Previous   float64
	Remaining  float64
	Capacity   float64
	Status     string
	MovementID int64
}

type quantityRow struct {
	Remaining float64 `gorm:"column:remaining"`
	Capacity  float64 `gorm:"column:capacity"`
}

// Policy returns the low-stock policy currently in force.
func (l *Ledger) Policy() ThresholdPolicy {
	if l.inventory == nil {
		return DefaultThresholdPolicy()
	}
	return PolicyFromConfig(l.inventory.Get().LowStock)
}

// Transaction runs fn in a database transaction bound to ctx.
func (l *Ledger) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return l.db.WithContext(ctx).Transaction(fn)
}

// Consume decrements req.Quantity from the source inside tx.
//
// The decrement is a conditional update on the live remaining value, so two
// transactions racing for the same stock cannot both succeed when their sum
// exceeds it: the loser matches zero rows and gets ErrExceedsAvailable.
func (l *Ledger) Consume(ctx context.Context, tx *gorm.DB, req ConsumeRequest) (*ConsumeResult, error) {
	ownerID := strings.TrimSpace(req.OwnerID)
	if ownerID == "" {
		return nil, ErrInvalidOwner
	}
	if !req.Source.valid() || req.SourceID == 0 {
		return nil, ErrInvalidSource
	}
	quantity := NormalizeQuantity(req.Quantity)
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	src := req.Source
	db := tx.WithContext(ctx)

	before, err := l.loadQuantities(db, src, req.SourceID, ownerID)
	if err != nil {
		return nil, err
	}
	if err := CheckAvailable(quantity, before.Remaining); err != nil {
		l.obsMetrics.RecordConsumption(string(src.Kind), "rejected")
		return nil, &ExceedsAvailableError{Source: src.Kind, Requested: quantity, Available: before.Remaining}
	}

	now := l.clock.Now()
	result := db.Exec(
		fmt.Sprintf(`UPDATE %s SET %s = %s - ?, updated_at = ? WHERE id = ? AND owner_id = ? AND %s >= ?`,
			src.Table, src.RemainingColumn, src.RemainingColumn, src.RemainingColumn),
		quantity,
		now,
		req.SourceID,
		ownerID,
		quantity,
	)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		// another consumption committed between the read and the decrement
		latest, err := l.loadQuantities(db, src, req.SourceID, ownerID)
		if err != nil {
			return nil, err
		}
		l.obsMetrics.RecordConsumption(string(src.Kind), "rejected")
		return nil, &ExceedsAvailableError{Source: src.Kind, Requested: quantity, Available: latest.Remaining}
	}

	after, err := l.loadQuantities(db, src, req.SourceID, ownerID)
	if err != nil {
		return nil, err
	}
	remaining := NormalizeQuantity(after.Remaining)
	if remaining < 0 {
		remaining = 0
	}
	previous := NormalizeQuantity(remaining + quantity)
	status := src.DeriveStatus(l.Policy(), previous, remaining, after.Capacity)

	if err := db.Exec(
		fmt.Sprintf(`UPDATE %s SET %s = ?, status = ?, updated_at = ? WHERE id = ? AND owner_id = ?`,
			src.Table, src.RemainingColumn),
		remaining,
		status,
		now,
		req.SourceID,
		ownerID,
	).Error; err != nil {
		return nil, err
	}

	movement := Movement{
		ID:             l.genID.Generate().Int64(),
		OwnerID:        ownerID,
		SourceType:     src.Kind,
		SourceID:       req.SourceID,
		ConsumerType:   req.ConsumerType,
		ConsumerID:     req.ConsumerID,
		Quantity:       quantity,
		RemainingAfter: remaining,
		CreatedAt:      now,
	}
	if err := db.Create(&movement).Error; err != nil {
		return nil, err
	}

	l.obsMetrics.RecordConsumption(string(src.Kind), "accepted")
	l.obsMetrics.RecordConsumedQuantity(string(src.Kind), quantity)
	l.obsMetrics.RecordStatus(string(src.Kind), status)
	l.log.Debug("source consumed",
		zap.String("source_type", string(src.Kind)),
		zap.Int64("source_id", req.SourceID),
		zap.String("consumer_type", string(req.ConsumerType)),
		zap.Int64("consumer_id", req.ConsumerID),
		zap.Float64("quantity", quantity),
		zap.Float64("remaining", remaining),
		zap.String("status", status),
	)

	return &ConsumeResult{
		Previous:   previous,
		Remaining:  remaining,
		Capacity:   after.Capacity,
		Status:     status,
		MovementID: movement.ID,
	}, nil
}

// Available returns the live remaining quantity of a source.
func (l *Ledger) Available(ctx context.Context, src Source, sourceID int64, ownerID string) (float64, error) {
	if !src.valid() {
		return 0, ErrInvalidSource
	}
	row, err := l.loadQuantities(l.db.WithContext(ctx), src, sourceID, strings.TrimSpace(ownerID))
	if err != nil {
		return 0, err
	}
	return row.Remaining, nil
}

// ListMovements returns journal lines for ownerID, newest first.
func (l *Ledger) ListMovements(ctx context.Context, ownerID string, filter MovementFilter) ([]Movement, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, ErrInvalidOwner
	}

	stmt := l.db.WithContext(ctx).Model(&Movement{}).Where("owner_id = ?", ownerID)
	if filter.SourceType != "" {
		stmt = stmt.Where("source_type = ?", filter.SourceType)
	}
	if filter.SourceID != 0 {
		stmt = stmt.Where("source_id = ?", filter.SourceID)
	}
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var items []Movement
	if err := stmt.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (l *Ledger) loadQuantities(db *gorm.DB, src Source, id int64, ownerID string) (*quantityRow, error) {
	var row quantityRow
	result := db.Raw(
		fmt.Sprintf(`SELECT %s AS remaining, %s AS capacity FROM %s WHERE id = ? AND owner_id = ?`,
			src.RemainingColumn, src.CapacityColumn, src.Table),
		id,
		ownerID,
	).Scan(&row)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrSourceNotFound
	}
	return &row, nil
}
