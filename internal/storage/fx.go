// Package storage selects the record store backend at startup.
package storage

import (
	"github.com/smallbiznis/labform/internal/config"
	"github.com/smallbiznis/labform/internal/labform/repository"
	"github.com/smallbiznis/labform/internal/migration"
	"github.com/smallbiznis/labform/pkg/db"
	"github.com/smallbiznis/labform/pkg/docstore"
	"go.uber.org/fx"
)

// Module wires the document store for mongo connection strings and the
// gorm stack for every other backend.
func Module(cfg config.Config) fx.Option {
	if cfg.DBType == config.DBTypeMongo {
		return fx.Module("storage.mongo",
			docstore.Module,
			fx.Provide(repository.NewMongoRepository),
		)
	}
	return fx.Module("storage.sql",
		db.Module,
		migration.Module,
		fx.Provide(repository.NewRepository),
	)
}
