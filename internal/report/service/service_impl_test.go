package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	applicationdomain "github.com/smallbiznis/agrichar/internal/application/domain"
	biochardomain "github.com/smallbiznis/agrichar/internal/biochar/domain"
	biomassdomain "github.com/smallbiznis/agrichar/internal/biomass/domain"
	"github.com/smallbiznis/agrichar/internal/clock"
	"github.com/smallbiznis/agrichar/internal/conservation"
	fertilizerdomain "github.com/smallbiznis/agrichar/internal/fertilizer/domain"
	"github.com/smallbiznis/agrichar/internal/ownercontext"
	parceldomain "github.com/smallbiznis/agrichar/internal/parcel/domain"
	"github.com/smallbiznis/agrichar/internal/report/domain"
	storagedomain "github.com/smallbiznis/agrichar/internal/storage/domain"
	dbpkg "github.com/smallbiznis/agrichar/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var now = time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)

func setupReportService(t *testing.T) (*gorm.DB, domain.Service) {
	t.Helper()

	db, err := dbpkg.NewTest()
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&parceldomain.Parcel{},
		&biomassdomain.Record{},
		&biochardomain.Batch{},
		&storagedomain.Record{},
		&applicationdomain.Record{},
		&fertilizerdomain.Inventory{},
		&fertilizerdomain.Usage{},
	))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return db, New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: clock.NewFakeClock(now),
	})
}

func floatPtr(v float64) *float64 { return &v }

func seedLedgers(t *testing.T, db *gorm.DB, owner string, base int64) {
	t.Helper()

	require.NoError(t, db.Create(&[]parceldomain.Parcel{
		{ID: base + 1, OwnerID: owner, Name: "North", AreaHectares: 5, CultivatedAreaHectares: floatPtr(4.5), Status: parceldomain.StatusActive, VerificationStatus: parceldomain.VerificationVerified, CreatedAt: now, UpdatedAt: now},
		{ID: base + 2, OwnerID: owner, Name: "South", AreaHectares: 2.5, Status: parceldomain.StatusInactive, VerificationStatus: parceldomain.VerificationPending, CreatedAt: now, UpdatedAt: now},
	}).Error)

	require.NoError(t, db.Create(&[]biomassdomain.Record{
		{ID: base + 10, OwnerID: owner, ParcelID: base + 1, CropType: "Rice husk", CropKey: "rice-husk", HarvestDate: now, Quantity: 100, Remaining: 60, Status: conservation.BiomassInProcess, CreatedAt: now, UpdatedAt: now},
		{ID: base + 11, OwnerID: owner, ParcelID: base + 1, CropType: "Rice husk", CropKey: "rice-husk", HarvestDate: now, Quantity: 50, Remaining: 50, Status: conservation.BiomassStored, CreatedAt: now, UpdatedAt: now},
		{ID: base + 12, OwnerID: owner, ParcelID: base + 1, CropType: "Corn cob", CropKey: "corn-cob", HarvestDate: now, Quantity: 30, Remaining: 0, Status: conservation.BiomassUsed, CreatedAt: now, UpdatedAt: now},
	}).Error)

	require.NoError(t, db.Create(&[]biochardomain.Batch{
		{ID: base + 20, OwnerID: owner, BiomassID: base + 10, BatchNumber: "BC-A" + owner, BiomassWeight: 40, BiocharWeight: floatPtr(12), YieldPercentage: floatPtr(30), ProductionDate: now, Status: biochardomain.StatusCompleted, CreatedAt: now, UpdatedAt: now},
		{ID: base + 21, OwnerID: owner, BiomassID: base + 12, BatchNumber: "BC-B" + owner, BiomassWeight: 30, BiocharWeight: floatPtr(7.5), YieldPercentage: floatPtr(25), ProductionDate: now, Status: biochardomain.StatusCompleted, CreatedAt: now, UpdatedAt: now},
		{ID: base + 22, OwnerID: owner, BiomassID: base + 11, BatchNumber: "BC-C" + owner, BiomassWeight: 0.5, ProductionDate: now, Status: biochardomain.StatusFailed, CreatedAt: now, UpdatedAt: now},
	}).Error)

	require.NoError(t, db.Create(&storagedomain.Record{
		ID: base + 30, OwnerID: owner, BatchID: base + 20, Location: "Shed", QuantityStored: 12, Remaining: 0,
		Status: conservation.StorageDepleted, StoredAt: now, CreatedAt: now, UpdatedAt: now,
	}).Error)

	fertilizerID := base + 40
	require.NoError(t, db.Create(&applicationdomain.Record{
		ID: base + 50, OwnerID: owner, StorageID: base + 30, ParcelID: base + 1, QuantityUsed: 12,
		FertilizerID: &fertilizerID, FertilizerQuantity: floatPtr(3.5), MixtureRatio: "12:3.5", AppliedAt: now, CreatedAt: now,
	}).Error)

	require.NoError(t, db.Create(&fertilizerdomain.Inventory{
		ID: fertilizerID, OwnerID: owner, Name: "NPK", FertilizerType: "NPK", InitialQuantity: 50, Quantity: 5,
		Unit: fertilizerdomain.DefaultUnit, Status: conservation.FertilizerLowStock, CreatedAt: now, UpdatedAt: now,
	}).Error)
	require.NoError(t, db.Create(&fertilizerdomain.Usage{
		ID: base + 60, OwnerID: owner, InventoryID: fertilizerID, ParcelID: base + 1, QuantityUsed: 41.5, UsedAt: now, CreatedAt: now,
	}).Error)
}

func TestSummaryFoldsEveryLedger(t *testing.T) {
	db, svc := setupReportService(t)
	seedLedgers(t, db, "farmer-a", 1000)
	seedLedgers(t, db, "farmer-b", 2000)

	ctx := ownercontext.WithOwner(context.Background(), ownercontext.Owner{ID: "farmer-a"})
	summary, err := svc.Summary(ctx)
	require.NoError(t, err)

	assert.Equal(t, "farmer-a", summary.OwnerID)
	assert.Equal(t, now, summary.GeneratedAt)

	assert.Equal(t, 2, summary.Parcels.Total)
	assert.Equal(t, 1, summary.Parcels.Active)
	assert.Equal(t, 7.5, summary.Parcels.AreaHectares)
	assert.Equal(t, 4.5, summary.Parcels.CultivatedAreaHectares)
	assert.Equal(t, map[string]int{"verified": 1, "pending": 1}, summary.Parcels.ByVerification)

	assert.Equal(t, 3, summary.Biomass.Records)
	assert.Equal(t, 180.0, summary.Biomass.Harvested)
	assert.Equal(t, 110.0, summary.Biomass.Remaining)
	wantCrops := []domain.CropTotal{
		{CropKey: "corn-cob", CropType: "Corn cob", Records: 1, Harvested: 30, Remaining: 0},
		{CropKey: "rice-husk", CropType: "Rice husk", Records: 2, Harvested: 150, Remaining: 110},
	}
	if diff := cmp.Diff(wantCrops, summary.Biomass.ByCrop); diff != "" {
		t.Errorf("crop totals mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, 3, summary.Biochar.Batches)
	assert.Equal(t, map[string]int{"completed": 2, "failed": 1}, summary.Biochar.ByStatus)
	assert.Equal(t, 70.5, summary.Biochar.BiomassConsumed)
	assert.Equal(t, 19.5, summary.Biochar.BiocharProduced)
	assert.Equal(t, 27.5, summary.Biochar.AverageYield)

	assert.Equal(t, 12.0, summary.Storage.Stored)
	assert.Zero(t, summary.Storage.Remaining)
	assert.Equal(t, map[string]int{"depleted": 1}, summary.Storage.ByStatus)

	assert.Equal(t, 1, summary.Applications.Records)
	assert.Equal(t, 12.0, summary.Applications.BiocharApplied)
	assert.Equal(t, 3.5, summary.Applications.FertilizerApplied)
	assert.Equal(t, 1, summary.Applications.ParcelsTreated)

	assert.Equal(t, 1, summary.Fertilizer.Inventories)
	assert.Equal(t, 50.0, summary.Fertilizer.Purchased)
	assert.Equal(t, 5.0, summary.Fertilizer.InStock)
	assert.Equal(t, 41.5, summary.Fertilizer.Used)
}

func TestSummaryForEmptyOwner(t *testing.T) {
	_, svc := setupReportService(t)

	ctx := ownercontext.WithOwner(context.Background(), ownercontext.Owner{ID: "newcomer"})
	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Zero(t, summary.Parcels.Total)
	assert.Zero(t, summary.Biochar.AverageYield)
	assert.Empty(t, summary.Biomass.ByCrop)

	_, err = svc.Summary(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidOwner)
}

func TestSummaryExports(t *testing.T) {
	db, svc := setupReportService(t)
	seedLedgers(t, db, "farmer-a", 1000)
	ctx := ownercontext.WithOwner(context.Background(), ownercontext.Owner{ID: "farmer-a"})

	pdf, err := svc.SummaryPDF(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)

	xlsx, err := svc.SummaryXLSX(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, xlsx)
}
