package fertilizer

import (
	"context"
	"time"

	"github.com/smallbiznis/agrichar/internal/config"
	"github.com/smallbiznis/agrichar/internal/fertilizer/domain"
	"github.com/smallbiznis/agrichar/internal/fertilizer/repository"
	"github.com/smallbiznis/agrichar/internal/fertilizer/service"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("fertilizer.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Invoke(registerReconciler),
)

const reconcileTimeout = 30 * time.Second

// registerReconciler re-derives stock statuses whenever the low-stock policy
// is reloaded.
func registerReconciler(holder *config.InventoryConfigHolder, svc domain.Service, log *zap.Logger) {
	log = log.Named("fertilizer.reconciler")
	holder.OnChange(func(cfg config.InventoryConfig) {
		ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
		defer cancel()

		changed, err := svc.ReconcileStatuses(ctx)
		if err != nil {
			log.Error("reconcile fertilizer statuses", zap.Error(err))
			return
		}
		log.Info("fertilizer statuses reconciled",
			zap.String("mode", cfg.LowStock.Mode),
			zap.Int("changed", changed),
		)
	})
}
