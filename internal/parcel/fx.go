package parcel

import (
	"github.com/smallbiznis/agrichar/internal/parcel/repository"
	"github.com/smallbiznis/agrichar/internal/parcel/service"
	"go.uber.org/fx"
)

var Module = fx.Module("parcel.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
