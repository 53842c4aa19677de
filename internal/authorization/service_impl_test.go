package authorization

import (
	"context"
	"testing"

	"github.com/smallbiznis/agrichar/internal/ownercontext"
	dbpkg "github.com/smallbiznis/agrichar/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) Service {
	t.Helper()

	db, err := dbpkg.NewTest()
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	enforcer, err := NewEnforcer(db)
	require.NoError(t, err)
	return NewService(Params{Log: zap.NewNop(), Enforcer: enforcer})
}

func TestFarmerCapabilities(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	farmer := ownercontext.Owner{ID: "farmer-a", Role: ownercontext.RoleFarmer}

	for _, object := range []string{ObjectParcel, ObjectBiomass, ObjectBiocharBatch, ObjectStorage, ObjectApplication, ObjectFertilizer} {
		for _, action := range []string{ActionView, ActionCreate, ActionUpdate, ActionDelete} {
			assert.NoError(t, svc.Authorize(ctx, farmer, object, action), "%s %s", object, action)
		}
	}
	assert.NoError(t, svc.Authorize(ctx, farmer, ObjectFertilizer, ActionFertilizerUse))
	assert.NoError(t, svc.Authorize(ctx, farmer, ObjectReport, ActionReportExport))
	assert.ErrorIs(t, svc.Authorize(ctx, farmer, ObjectParcel, ActionParcelVerify), ErrForbidden)
}

func TestAdminInheritsFarmer(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	admin := ownercontext.Owner{ID: "reviewer", Role: ownercontext.RoleAdmin}

	assert.NoError(t, svc.Authorize(ctx, admin, ObjectParcel, ActionParcelVerify))
	assert.NoError(t, svc.Authorize(ctx, admin, ObjectBiomass, ActionCreate))
}

func TestRoleChangeReplacesGrouping(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Authorize(ctx, ownercontext.Owner{ID: "u1", Role: ownercontext.RoleAdmin}, ObjectParcel, ActionParcelVerify))
	assert.ErrorIs(t, svc.Authorize(ctx, ownercontext.Owner{ID: "u1", Role: ownercontext.RoleFarmer}, ObjectParcel, ActionParcelVerify), ErrForbidden)
}

func TestAuthorizeRejectsBadInput(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	farmer := ownercontext.Owner{ID: "farmer-a"}

	assert.ErrorIs(t, svc.Authorize(ctx, ownercontext.Owner{}, ObjectParcel, ActionView), ErrInvalidActor)
	assert.ErrorIs(t, svc.Authorize(ctx, farmer, " ", ActionView), ErrInvalidObject)
	assert.ErrorIs(t, svc.Authorize(ctx, farmer, ObjectParcel, ""), ErrInvalidAction)
	assert.ErrorIs(t, svc.Authorize(ctx, ownercontext.Owner{ID: "x", Role: "auditor"}, ObjectParcel, ActionView), ErrForbidden)
}

func TestSeedIsIdempotent(t *testing.T) {
	db, err := dbpkg.NewTest()
	require.NoError(t, err)
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	first, err := NewEnforcer(db)
	require.NoError(t, err)
	policies, err := first.GetPolicy()
	require.NoError(t, err)

	second, err := NewEnforcer(db)
	require.NoError(t, err)
	again, err := second.GetPolicy()
	require.NoError(t, err)
	assert.Len(t, again, len(policies))
}
