package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	biochardomain "github.com/smallbiznis/agrichar/internal/biochar/domain"
	"github.com/smallbiznis/agrichar/internal/clock"
	"github.com/smallbiznis/agrichar/internal/conservation"
	"github.com/smallbiznis/agrichar/internal/ownercontext"
	"github.com/smallbiznis/agrichar/internal/storage/domain"
	"github.com/smallbiznis/agrichar/internal/storage/repository"
	dbpkg "github.com/smallbiznis/agrichar/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type batchStub struct {
	biochardomain.Service
	batches map[int64]*biochardomain.Batch
}

func (b *batchStub) Lookup(ctx context.Context, ownerID string, id int64) (*biochardomain.Batch, error) {
	batch, ok := b.batches[id]
	if !ok || batch.OwnerID != ownerID {
		return nil, biochardomain.ErrNotFound
	}
	return batch, nil
}

func setupStorageService(t *testing.T, batches ...*biochardomain.Batch) domain.Service {
	t.Helper()

	db, err := dbpkg.NewTest()
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Record{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	stub := &batchStub{batches: map[int64]*biochardomain.Batch{}}
	for _, batch := range batches {
		stub.batches[batch.ID] = batch
	}

	return New(Params{
		DB:         db,
		Log:        zap.NewNop(),
		GenID:      node,
		Clock:      clock.NewFakeClock(time.Date(2025, 6, 5, 10, 0, 0, 0, time.UTC)),
		Repo:       repository.Provide(),
		BiocharSvc: stub,
	})
}

func ownerCtx(id string) context.Context {
	return ownercontext.WithOwner(context.Background(), ownercontext.Owner{ID: id})
}

func floatPtr(v float64) *float64 { return &v }

func completedBatch(id int64, owner string, weight float64) *biochardomain.Batch {
	return &biochardomain.Batch{
		ID:            id,
		OwnerID:       owner,
		Status:        biochardomain.StatusCompleted,
		BiomassWeight: 40,
		BiocharWeight: &weight,
	}
}

func TestStoreCompletedBatch(t *testing.T) {
	svc := setupStorageService(t, completedBatch(7, "farmer-a", 12))
	ctx := ownerCtx("farmer-a")

	record, err := svc.Create(ctx, domain.CreateRequest{BatchID: "7", Location: " Shed 2 "})
	require.NoError(t, err)
	assert.Equal(t, "Shed 2", record.Location)
	assert.Equal(t, 12.0, record.QuantityStored)
	assert.Equal(t, 12.0, record.Remaining)
	assert.Equal(t, conservation.StorageStored, record.Status)

	_, err = svc.Create(ctx, domain.CreateRequest{BatchID: "7", Location: "Shed 3"})
	assert.ErrorIs(t, err, domain.ErrAlreadyStored)

	got, err := svc.Get(ctx, snowflake.ID(record.ID).String())
	require.NoError(t, err)
	assert.Equal(t, record.BatchID, got.BatchID)
}

func TestStoreRejectsUnfinishedBatches(t *testing.T) {
	inProgress := &biochardomain.Batch{ID: 8, OwnerID: "farmer-a", Status: biochardomain.StatusInProgress}
	failed := &biochardomain.Batch{ID: 9, OwnerID: "farmer-a", Status: biochardomain.StatusFailed}
	empty := completedBatch(10, "farmer-a", 0)
	svc := setupStorageService(t, inProgress, failed, empty, completedBatch(11, "farmer-b", 5))
	ctx := ownerCtx("farmer-a")

	_, err := svc.Create(ctx, domain.CreateRequest{BatchID: "8", Location: "Shed"})
	assert.ErrorIs(t, err, domain.ErrBatchNotComplete)

	_, err = svc.Create(ctx, domain.CreateRequest{BatchID: "9", Location: "Shed"})
	assert.ErrorIs(t, err, domain.ErrBatchNotComplete)

	_, err = svc.Create(ctx, domain.CreateRequest{BatchID: "10", Location: "Shed"})
	assert.ErrorIs(t, err, domain.ErrBatchEmpty)

	_, err = svc.Create(ctx, domain.CreateRequest{BatchID: "11", Location: "Shed"})
	assert.ErrorIs(t, err, domain.ErrInvalidBatch)

	_, err = svc.Create(ctx, domain.CreateRequest{BatchID: "7", Location: ""})
	assert.ErrorIs(t, err, domain.ErrInvalidLocation)
}

func TestUpdateStorageFollowsRemaining(t *testing.T) {
	svc := setupStorageService(t, completedBatch(7, "farmer-a", 12))
	ctx := ownerCtx("farmer-a")

	record, err := svc.Create(ctx, domain.CreateRequest{BatchID: "7", Location: "Shed"})
	require.NoError(t, err)
	id := snowflake.ID(record.ID).String()

	updated, err := svc.Update(ctx, domain.UpdateRequest{ID: id, Remaining: floatPtr(4)})
	require.NoError(t, err)
	assert.Equal(t, conservation.StorageInUse, updated.Status)

	updated, err = svc.Update(ctx, domain.UpdateRequest{ID: id, Remaining: floatPtr(0)})
	require.NoError(t, err)
	assert.Equal(t, conservation.StorageDepleted, updated.Status)

	// manual correction may move the status back
	updated, err = svc.Update(ctx, domain.UpdateRequest{ID: id, Remaining: floatPtr(12)})
	require.NoError(t, err)
	assert.Equal(t, conservation.StorageStored, updated.Status)

	_, err = svc.Update(ctx, domain.UpdateRequest{ID: id, QuantityStored: floatPtr(10)})
	assert.ErrorIs(t, err, domain.ErrInvalidRemaining)

	depleted, err := svc.List(ctx, domain.ListRequest{Status: "depleted"})
	require.NoError(t, err)
	assert.Empty(t, depleted)

	require.NoError(t, svc.Delete(ctx, id))
	assert.ErrorIs(t, svc.Delete(ctx, id), domain.ErrNotFound)
}
