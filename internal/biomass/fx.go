package biomass

import (
	"github.com/smallbiznis/agrichar/internal/biomass/repository"
	"github.com/smallbiznis/agrichar/internal/biomass/service"
	"go.uber.org/fx"
)

var Module = fx.Module("biomass.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
