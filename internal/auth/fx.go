package auth

import (
	"github.com/nexusverde/console/internal/auth/identity"
	"github.com/nexusverde/console/internal/auth/repository"
	"github.com/nexusverde/console/internal/auth/service"
	"github.com/nexusverde/console/internal/auth/session"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(identity.NewHub),
	fx.Provide(repository.New),
	fx.Provide(service.New),
	fx.Provide(session.NewManager),
)
