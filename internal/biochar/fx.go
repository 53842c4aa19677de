package biochar

import (
	"github.com/smallbiznis/agrichar/internal/biochar/repository"
	"github.com/smallbiznis/agrichar/internal/biochar/service"
	"go.uber.org/fx"
)

var Module = fx.Module("biochar.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
