package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/agrichar/internal/clock"
	"github.com/smallbiznis/agrichar/internal/ownercontext"
	"github.com/smallbiznis/agrichar/internal/parcel/domain"
	"github.com/smallbiznis/agrichar/internal/parcel/repository"
	dbpkg "github.com/smallbiznis/agrichar/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupParcelService(t *testing.T) domain.Service {
	t.Helper()

	db, err := dbpkg.NewTest()
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Parcel{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	})
}

func farmerCtx(id string) context.Context {
	return ownercontext.WithOwner(context.Background(), ownercontext.Owner{ID: id, Role: ownercontext.RoleFarmer})
}

func floatPtr(v float64) *float64 { return &v }

func strPtr(v string) *string { return &v }

func TestCreateParcelDefaults(t *testing.T) {
	svc := setupParcelService(t)
	ctx := farmerCtx("farmer-a")

	created, err := svc.Create(ctx, domain.CreateRequest{
		Name:                   "  North field ",
		AreaHectares:           4.5,
		CultivatedAreaHectares: floatPtr(3),
		DocumentURLs:           []string{"https://files.example.com/deed.pdf", " "},
		Metadata:               map[string]any{"village": "Sukamaju"},
	})
	require.NoError(t, err)
	assert.Equal(t, "North field", created.Name)
	assert.Equal(t, domain.StatusActive, created.Status)
	assert.Equal(t, domain.VerificationPending, created.VerificationStatus)
	assert.JSONEq(t, `["https://files.example.com/deed.pdf"]`, string(created.DocumentURLs))

	got, err := svc.Get(ctx, snowflake.ID(created.ID).String())
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Sukamaju", got.Metadata["village"])
}

func TestCreateParcelValidation(t *testing.T) {
	svc := setupParcelService(t)
	ctx := farmerCtx("farmer-a")

	_, err := svc.Create(context.Background(), domain.CreateRequest{Name: "x", AreaHectares: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidOwner)

	_, err = svc.Create(ctx, domain.CreateRequest{Name: " ", AreaHectares: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(ctx, domain.CreateRequest{Name: "x", AreaHectares: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidArea)

	_, err = svc.Create(ctx, domain.CreateRequest{Name: "x", AreaHectares: 1, CultivatedAreaHectares: floatPtr(2)})
	assert.ErrorIs(t, err, domain.ErrInvalidArea)

	_, err = svc.Create(ctx, domain.CreateRequest{Name: "x", AreaHectares: 1, DocumentURLs: []string{"not a url"}})
	assert.ErrorIs(t, err, domain.ErrInvalidDocumentURL)
}

func TestParcelsAreScopedToOwner(t *testing.T) {
	svc := setupParcelService(t)

	created, err := svc.Create(farmerCtx("farmer-a"), domain.CreateRequest{Name: "A", AreaHectares: 1})
	require.NoError(t, err)
	_, err = svc.Create(farmerCtx("farmer-b"), domain.CreateRequest{Name: "B", AreaHectares: 2})
	require.NoError(t, err)

	items, err := svc.List(farmerCtx("farmer-a"), domain.ListRequest{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "A", items[0].Name)

	_, err = svc.Get(farmerCtx("farmer-b"), snowflake.ID(created.ID).String())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = svc.Delete(farmerCtx("farmer-b"), snowflake.ID(created.ID).String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateAndDeactivateParcel(t *testing.T) {
	svc := setupParcelService(t)
	ctx := farmerCtx("farmer-a")

	created, err := svc.Create(ctx, domain.CreateRequest{Name: "A", AreaHectares: 3})
	require.NoError(t, err)
	id := snowflake.ID(created.ID).String()

	updated, err := svc.Update(ctx, domain.UpdateRequest{
		ID:                id,
		Name:              strPtr("A-East"),
		ActualYieldTonnes: floatPtr(1.2),
		SoilType:          strPtr("andosol"),
	})
	require.NoError(t, err)
	assert.Equal(t, "A-East", updated.Name)
	require.NotNil(t, updated.SoilType)
	assert.Equal(t, "andosol", *updated.SoilType)

	_, err = svc.Update(ctx, domain.UpdateRequest{ID: id, Status: strPtr("archived")})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	deactivated, err := svc.Deactivate(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInactive, deactivated.Status)
	assert.False(t, deactivated.IsActive())

	inactive, err := svc.List(ctx, domain.ListRequest{Status: "inactive"})
	require.NoError(t, err)
	assert.Len(t, inactive, 1)

	require.NoError(t, svc.Delete(ctx, id))
	_, err = svc.Get(ctx, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestVerifyParcelRequiresAdmin(t *testing.T) {
	svc := setupParcelService(t)

	created, err := svc.Create(farmerCtx("farmer-a"), domain.CreateRequest{Name: "A", AreaHectares: 3})
	require.NoError(t, err)
	id := snowflake.ID(created.ID).String()

	_, err = svc.Verify(farmerCtx("farmer-a"), domain.VerifyRequest{ID: id, Status: domain.VerificationVerified})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	adminCtx := ownercontext.WithOwner(context.Background(), ownercontext.Owner{ID: "admin-1", Role: ownercontext.RoleAdmin})

	_, err = svc.Verify(adminCtx, domain.VerifyRequest{ID: id, Status: domain.VerificationPending})
	assert.ErrorIs(t, err, domain.ErrInvalidVerificationStatus)

	verified, err := svc.Verify(adminCtx, domain.VerifyRequest{ID: id, Status: "Verified", Note: strPtr("deed matches")})
	require.NoError(t, err)
	assert.Equal(t, domain.VerificationVerified, verified.VerificationStatus)
	require.NotNil(t, verified.VerifiedBy)
	assert.Equal(t, "admin-1", *verified.VerifiedBy)
	require.NotNil(t, verified.VerifiedAt)

	got, err := svc.Get(farmerCtx("farmer-a"), id)
	require.NoError(t, err)
	assert.Equal(t, domain.VerificationVerified, got.VerificationStatus)
}
