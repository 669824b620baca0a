package migration

import (
	admindomain "github.com/nexusverde/console/internal/adminregistry/domain"
	auditdomain "github.com/nexusverde/console/internal/audit/domain"
	authdomain "github.com/nexusverde/console/internal/auth/domain"
	companydomain "github.com/nexusverde/console/internal/company/domain"
	"github.com/nexusverde/console/internal/config"
	provisioningevent "github.com/nexusverde/console/internal/provisioning/event"
	"github.com/nexusverde/console/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// sqlite setups are for local development; let gorm derive the
			// schema from the models.
			if err := conn.AutoMigrate(
				&authdomain.User{},
				&authdomain.Session{},
				&admindomain.Administrator{},
				&companydomain.Company{},
				&provisioningevent.ProvisioningEvent{},
				&auditdomain.AuditLog{},
			); err != nil {
				return err
			}
		}

		return seed.EnsureRootAdmin(conn, cfg)
	}),
)
