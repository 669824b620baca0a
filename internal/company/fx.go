package company

import (
	"github.com/nexusverde/console/internal/company/repository"
	"github.com/nexusverde/console/internal/company/service"
	"go.uber.org/fx"
)

var Module = fx.Module("company",
	fx.Provide(repository.New),
	fx.Provide(service.NewService),
)
