package conservation

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/agrichar/internal/clock"
	"github.com/smallbiznis/agrichar/internal/config"
	dbpkg "github.com/smallbiznis/agrichar/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const testOwner = "farmer-1"

func newLedgerDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := dbpkg.NewTest()
	require.NoError(t, err)

	for _, stmt := range []string{
		`CREATE TABLE biomass_records (
			id BIGINT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			quantity NUMERIC NOT NULL,
			remaining NUMERIC NOT NULL,
			status TEXT NOT NULL,
			updated_at DATETIME
		)`,
		`CREATE TABLE storage_records (
			id BIGINT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			quantity_stored NUMERIC NOT NULL,
			remaining NUMERIC NOT NULL,
			status TEXT NOT NULL,
			updated_at DATETIME
		)`,
		`CREATE TABLE fertilizer_inventories (
			id BIGINT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			initial_quantity NUMERIC NOT NULL,
			quantity NUMERIC NOT NULL,
			status TEXT NOT NULL,
			updated_at DATETIME
		)`,
	} {
		require.NoError(t, db.Exec(stmt).Error)
	}
	require.NoError(t, db.AutoMigrate(&Movement{}))
	return db
}

func closeDB(t *testing.T, db *gorm.DB) {
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}

func newTestLedger(t *testing.T, db *gorm.DB, holder *config.InventoryConfigHolder) *Ledger {
	t.Helper()

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return NewLedger(Params{
		DB:        db,
		Log:       zap.NewNop(),
		GenID:     node,
		Clock:     clock.NewFakeClock(time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)),
		Inventory: holder,
	})
}

type sourceRow struct {
	Remaining float64
	Capacity  float64
	Status    string
}

func readSource(t *testing.T, db *gorm.DB, src Source, id int64) sourceRow {
	t.Helper()

	var row sourceRow
	err := db.Raw(
		"SELECT "+src.RemainingColumn+" AS remaining, "+src.CapacityColumn+" AS capacity, status FROM "+src.Table+" WHERE id = ?",
		id,
	).Scan(&row).Error
	require.NoError(t, err)
	return row
}

func seedBiomass(t *testing.T, db *gorm.DB, id int64, quantity, remaining float64) {
	t.Helper()
	require.NoError(t, db.Exec(
		`INSERT INTO biomass_records (id, owner_id, quantity, remaining, status) VALUES (?, ?, ?, ?, ?)`,
		id, testOwner, quantity, remaining, string(DeriveBiomassStatus(remaining, quantity)),
	).Error)
}

func consume(t *testing.T, l *Ledger, req ConsumeRequest) (*ConsumeResult, error) {
	t.Helper()

	var result *ConsumeResult
	err := l.Transaction(context.Background(), func(tx *gorm.DB) error {
		res, err := l.Consume(context.Background(), tx, req)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	return result, err
}

func TestLedgerConsumeDecrementsAndDerivesStatus(t *testing.T) {
	db := newLedgerDB(t)
	defer closeDB(t, db)
	l := newTestLedger(t, db, nil)
	seedBiomass(t, db, 10, 100, 100)

	res, err := consume(t, l, ConsumeRequest{
		OwnerID:      testOwner,
		Source:       BiomassSource,
		SourceID:     10,
		Quantity:     40,
		ConsumerType: ConsumerBiocharBatch,
		ConsumerID:   501,
	})
	require.NoError(t, err)
	assert.Equal(t, 100.0, res.Previous)
	assert.Equal(t, 60.0, res.Remaining)
	assert.Equal(t, string(BiomassInProcess), res.Status)

	row := readSource(t, db, BiomassSource, 10)
	assert.Equal(t, 60.0, row.Remaining)
	assert.Equal(t, string(BiomassInProcess), row.Status)

	movements, err := l.ListMovements(context.Background(), testOwner, MovementFilter{SourceType: SourceBiomass, SourceID: 10})
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, res.MovementID, movements[0].ID)
	assert.Equal(t, ConsumerBiocharBatch, movements[0].ConsumerType)
	assert.Equal(t, int64(501), movements[0].ConsumerID)
	assert.Equal(t, 40.0, movements[0].Quantity)
	assert.Equal(t, 60.0, movements[0].RemainingAfter)
}

func TestLedgerRejectsOverdraftWithoutSideEffects(t *testing.T) {
	db := newLedgerDB(t)
	defer closeDB(t, db)
	l := newTestLedger(t, db, nil)
	seedBiomass(t, db, 11, 100, 60)

	_, err := consume(t, l, ConsumeRequest{
		OwnerID:      testOwner,
		Source:       BiomassSource,
		SourceID:     11,
		Quantity:     60.5,
		ConsumerType: ConsumerBiocharBatch,
		ConsumerID:   502,
	})
	require.ErrorIs(t, err, ErrExceedsAvailable)

	var exceeds *ExceedsAvailableError
	require.True(t, errors.As(err, &exceeds))
	assert.Equal(t, 60.0, exceeds.Available)
	assert.Equal(t, 60.5, exceeds.Requested)

	row := readSource(t, db, BiomassSource, 11)
	assert.Equal(t, 60.0, row.Remaining)
	assert.Equal(t, string(BiomassInProcess), row.Status)

	movements, err := l.ListMovements(context.Background(), testOwner, MovementFilter{})
	require.NoError(t, err)
	assert.Empty(t, movements)
}

func TestLedgerExactConsumptionDepletesStorage(t *testing.T) {
	db := newLedgerDB(t)
	defer closeDB(t, db)
	l := newTestLedger(t, db, nil)
	require.NoError(t, db.Exec(
		`INSERT INTO storage_records (id, owner_id, quantity_stored, remaining, status) VALUES (?, ?, ?, ?, ?)`,
		20, testOwner, 12, 12, string(StorageStored),
	).Error)

	res, err := consume(t, l, ConsumeRequest{
		OwnerID:      testOwner,
		Source:       StorageSource,
		SourceID:     20,
		Quantity:     12,
		ConsumerType: ConsumerApplication,
		ConsumerID:   601,
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Remaining)
	assert.Equal(t, string(StorageDepleted), res.Status)

	row := readSource(t, db, StorageSource, 20)
	assert.Equal(t, 0.0, row.Remaining)
	assert.Equal(t, string(StorageDepleted), row.Status)
}

func TestLedgerFertilizerFollowsPolicy(t *testing.T) {
	tests := []struct {
		name   string
		cfg    config.InventoryConfig
		status FertilizerStatus
	}{
		{
			name:   "percentage of original",
			cfg:    config.DefaultInventoryConfig(),
			status: FertilizerLowStock,
		},
		{
			name: "fixed floor",
			cfg: config.InventoryConfig{LowStock: config.LowStockConfig{
				Mode:  config.LowStockModeFixed,
				Floor: 10,
			}},
			status: FertilizerLowStock,
		},
		{
			name: "fixed floor below the remainder",
			cfg: config.InventoryConfig{LowStock: config.LowStockConfig{
				Mode:  config.LowStockModeFixed,
				Floor: 2,
			}},
			status: FertilizerInStock,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newLedgerDB(t)
			defer closeDB(t, db)
			l := newTestLedger(t, db, config.NewStaticInventoryConfigHolder(tt.cfg))
			require.NoError(t, db.Exec(
				`INSERT INTO fertilizer_inventories (id, owner_id, initial_quantity, quantity, status) VALUES (?, ?, ?, ?, ?)`,
				30, testOwner, 50, 50, string(FertilizerInStock),
			).Error)

			res, err := consume(t, l, ConsumeRequest{
				OwnerID:      testOwner,
				Source:       FertilizerSource,
				SourceID:     30,
				Quantity:     45,
				ConsumerType: ConsumerFertilizerUsage,
				ConsumerID:   701,
			})
			require.NoError(t, err)
			assert.Equal(t, 5.0, res.Remaining)
			assert.Equal(t, string(tt.status), res.Status)

			res, err = consume(t, l, ConsumeRequest{
				OwnerID:      testOwner,
				Source:       FertilizerSource,
				SourceID:     30,
				Quantity:     5,
				ConsumerType: ConsumerFertilizerUsage,
				ConsumerID:   702,
			})
			require.NoError(t, err)
			assert.Equal(t, 0.0, res.Remaining)
			assert.Equal(t, string(FertilizerOutOfStock), res.Status)
		})
	}
}

func TestLedgerScopesByOwner(t *testing.T) {
	db := newLedgerDB(t)
	defer closeDB(t, db)
	l := newTestLedger(t, db, nil)
	seedBiomass(t, db, 12, 100, 100)

	_, err := consume(t, l, ConsumeRequest{
		OwnerID:      "someone-else",
		Source:       BiomassSource,
		SourceID:     12,
		Quantity:     1,
		ConsumerType: ConsumerBiocharBatch,
		ConsumerID:   503,
	})
	assert.ErrorIs(t, err, ErrSourceNotFound)

	_, err = l.Available(context.Background(), BiomassSource, 999, testOwner)
	assert.ErrorIs(t, err, ErrSourceNotFound)

	available, err := l.Available(context.Background(), BiomassSource, 12, testOwner)
	require.NoError(t, err)
	assert.Equal(t, 100.0, available)
}

func TestLedgerRejectsInvalidRequests(t *testing.T) {
	db := newLedgerDB(t)
	defer closeDB(t, db)
	l := newTestLedger(t, db, nil)
	seedBiomass(t, db, 13, 100, 100)

	_, err := consume(t, l, ConsumeRequest{OwnerID: " ", Source: BiomassSource, SourceID: 13, Quantity: 1})
	assert.ErrorIs(t, err, ErrInvalidOwner)

	_, err = consume(t, l, ConsumeRequest{OwnerID: testOwner, Source: Source{}, SourceID: 13, Quantity: 1})
	assert.ErrorIs(t, err, ErrInvalidSource)

	_, err = consume(t, l, ConsumeRequest{OwnerID: testOwner, Source: BiomassSource, SourceID: 13, Quantity: 0})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	assert.Equal(t, 100.0, readSource(t, db, BiomassSource, 13).Remaining)
}

func TestLedgerRollsBackWithConsumerFailure(t *testing.T) {
	db := newLedgerDB(t)
	defer closeDB(t, db)
	l := newTestLedger(t, db, nil)
	seedBiomass(t, db, 14, 100, 100)

	insertFailed := errors.New("consumer insert failed")
	err := l.Transaction(context.Background(), func(tx *gorm.DB) error {
		if _, err := l.Consume(context.Background(), tx, ConsumeRequest{
			OwnerID:      testOwner,
			Source:       BiomassSource,
			SourceID:     14,
			Quantity:     30,
			ConsumerType: ConsumerBiocharBatch,
			ConsumerID:   504,
		}); err != nil {
			return err
		}
		return insertFailed
	})
	require.ErrorIs(t, err, insertFailed)

	row := readSource(t, db, BiomassSource, 14)
	assert.Equal(t, 100.0, row.Remaining)
	assert.Equal(t, string(BiomassStored), row.Status)

	movements, err := l.ListMovements(context.Background(), testOwner, MovementFilter{})
	require.NoError(t, err)
	assert.Empty(t, movements)
}

func TestLedgerConcurrentConsumptionsCannotOverdraw(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	db := newLedgerDB(t)
	defer closeDB(t, db)
	l := newTestLedger(t, db, nil)
	seedBiomass(t, db, 15, 100, 100)

	errs := make([]error, 2)
	var g errgroup.Group
	for i := range errs {
		g.Go(func() error {
			_, errs[i] = consume(t, l, ConsumeRequest{
				OwnerID:      testOwner,
				Source:       BiomassSource,
				SourceID:     15,
				Quantity:     60,
				ConsumerType: ConsumerBiocharBatch,
				ConsumerID:   int64(600 + i),
			})
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var succeeded, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrExceedsAvailable):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, rejected)

	row := readSource(t, db, BiomassSource, 15)
	assert.Equal(t, 40.0, row.Remaining)
	assert.Equal(t, string(BiomassInProcess), row.Status)
}

func TestLedgerRejectsWhenRemainingDropsBeforeDecrement(t *testing.T) {
	db := newLedgerDB(t)
	defer closeDB(t, db)
	l := newTestLedger(t, db, nil)
	seedBiomass(t, db, 16, 100, 100)

	// A second writer takes 60 kg after the first read and before the
	// conditional decrement runs.
	var interleaved atomic.Bool
	var competingErr error
	require.NoError(t, db.Callback().Raw().Before("gorm:raw").Register("test:competing_writer", func(tx *gorm.DB) {
		if !strings.Contains(tx.Statement.SQL.String(), "remaining >= ?") {
			return
		}
		if !interleaved.CompareAndSwap(false, true) {
			return
		}
		_, competingErr = l.Consume(context.Background(), tx.Session(&gorm.Session{NewDB: true}), ConsumeRequest{
			OwnerID:      testOwner,
			Source:       BiomassSource,
			SourceID:     16,
			Quantity:     60,
			ConsumerType: ConsumerBiocharBatch,
			ConsumerID:   700,
		})
	}))

	var consumeErr error
	err := l.Transaction(context.Background(), func(tx *gorm.DB) error {
		_, consumeErr = l.Consume(context.Background(), tx, ConsumeRequest{
			OwnerID:      testOwner,
			Source:       BiomassSource,
			SourceID:     16,
			Quantity:     60,
			ConsumerType: ConsumerBiocharBatch,
			ConsumerID:   701,
		})
		return nil
	})
	require.NoError(t, err)
	require.True(t, interleaved.Load())
	require.NoError(t, competingErr)

	require.ErrorIs(t, consumeErr, ErrExceedsAvailable)
	var exceeds *ExceedsAvailableError
	require.ErrorAs(t, consumeErr, &exceeds)
	assert.Equal(t, 60.0, exceeds.Requested)
	assert.Equal(t, 40.0, exceeds.Available)

	row := readSource(t, db, BiomassSource, 16)
	assert.Equal(t, 40.0, row.Remaining)
	assert.Equal(t, string(BiomassInProcess), row.Status)

	movements, err := l.ListMovements(context.Background(), testOwner, MovementFilter{SourceID: 16})
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, int64(700), movements[0].ConsumerID)
	assert.Equal(t, 40.0, movements[0].RemainingAfter)
}
