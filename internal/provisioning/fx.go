package provisioning

import (
	"github.com/nexusverde/console/internal/provisioning/client"
	"github.com/nexusverde/console/internal/provisioning/domain"
	"github.com/nexusverde/console/internal/provisioning/event"
	"github.com/nexusverde/console/internal/provisioning/service"
	"go.uber.org/fx"
)

var Module = fx.Module("provisioning",
	fx.Provide(
		fx.Annotate(client.New, fx.As(new(domain.UserProvisioner))),
		event.NewPublisher,
		service.NewOrchestrator,
	),
)
