package labform

import (
	"github.com/smallbiznis/labform/internal/labform/service"
	"go.uber.org/fx"
)

// Module provides the record service. The repository comes from the
// storage module selected at startup.
var Module = fx.Module("labform.service",
	fx.Provide(service.NewService),
)
