package fertilizer

import (
	"context"
	"errors"
	"testing"

	"github.com/smallbiznis/agrichar/internal/config"
	"github.com/smallbiznis/agrichar/internal/fertilizer/domain"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type reconcileStub struct {
	domain.Service
	calls int
	err   error
}

func (r *reconcileStub) ReconcileStatuses(ctx context.Context) (int, error) {
	r.calls++
	return 3, r.err
}

func TestPolicyReloadTriggersReconciliation(t *testing.T) {
	holder := config.NewStaticInventoryConfigHolder(config.DefaultInventoryConfig())
	stub := &reconcileStub{}
	registerReconciler(holder, stub, zap.NewNop())

	holder.Set(config.InventoryConfig{LowStock: config.LowStockConfig{
		Mode:  config.LowStockModeFixed,
		Floor: 5,
	}})
	assert.Equal(t, 1, stub.calls)

	stub.err = errors.New("database is gone")
	holder.Set(config.DefaultInventoryConfig())
	assert.Equal(t, 2, stub.calls)
}
