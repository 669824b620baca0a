package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/nexusverde/console/internal/config"
	"github.com/nexusverde/console/internal/migration"
	"github.com/nexusverde/console/internal/observability"
	"github.com/nexusverde/console/internal/server"
	"github.com/nexusverde/console/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
