package storage

import (
	"github.com/smallbiznis/agrichar/internal/storage/repository"
	"github.com/smallbiznis/agrichar/internal/storage/service"
	"go.uber.org/fx"
)

var Module = fx.Module("storage.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
