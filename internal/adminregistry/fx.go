package adminregistry

import (
	"github.com/nexusverde/console/internal/adminregistry/gate"
	"github.com/nexusverde/console/internal/adminregistry/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("adminregistry",
	fx.Provide(repository.New),
	fx.Provide(gate.New),
)
