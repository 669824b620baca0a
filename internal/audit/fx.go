package audit

import (
	"github.com/nexusverde/console/internal/audit/repository"
	"github.com/nexusverde/console/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit",
	fx.Provide(repository.New),
	fx.Provide(service.NewService),
)
