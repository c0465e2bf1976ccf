package migration

import (
	"context"

	"github.com/smallbiznis/labform/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(registerHooks),
)

// Run brings the relational schema up to date for the configured backend.
func Run(conn *gorm.DB, dbType string) error {
	if dbType != config.DBTypePostgres {
		return AutoMigrate(conn)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return RunMigrations(sqlDB)
}

func registerHooks(lc fx.Lifecycle, conn *gorm.DB, cfg config.Config, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if err := Run(conn, cfg.DBType); err != nil {
				log.Error("schema migration failed", zap.String("type", cfg.DBType), zap.Error(err))
				return nil
			}
			log.Info("schema ready", zap.String("type", cfg.DBType))
			return nil
		},
	})
}
