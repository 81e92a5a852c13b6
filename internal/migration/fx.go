package migration

import (
	authdomain "github.com/parceltrail/parceltrail/internal/auth/domain"
	"github.com/parceltrail/parceltrail/internal/config"
	invitationdomain "github.com/parceltrail/parceltrail/internal/invitation/domain"
	organizationdomain "github.com/parceltrail/parceltrail/internal/organization/domain"
	shipmentdomain "github.com/parceltrail/parceltrail/internal/shipment/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType != "postgres" {
			// golang-migrate sources are written for postgres; other
			// dialects (dev/test sqlite, mysql) use gorm auto-migration.
			return conn.AutoMigrate(
				&organizationdomain.Organization{},
				&authdomain.User{},
				&authdomain.Session{},
				&shipmentdomain.Shipment{},
				&shipmentdomain.TravelEvent{},
				&invitationdomain.Invitation{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
