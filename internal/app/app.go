// Package app is the composition root shared by the standalone binary and
// the serverless entry point.
package app

import (
	"context"
	"encoding/binary"
	"fmt"
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/smallbiznis/labform/internal/clock"
	"github.com/smallbiznis/labform/internal/config"
	"github.com/smallbiznis/labform/internal/labform"
	"github.com/smallbiznis/labform/internal/observability"
	"github.com/smallbiznis/labform/internal/server"
	"github.com/smallbiznis/labform/internal/storage"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// Options assembles the application graph for cfg.
func Options(cfg config.Config) fx.Option {
	return fx.Options(
		fx.Supply(cfg),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
		observability.Module,
		clock.Module,
		fx.Provide(newSnowflakeNode),
		storage.Module(cfg),
		labform.Module,
		server.Module,
	)
}

// newSnowflakeNode honours SNOWFLAKE_NODE. Without it every instance draws
// a random node so concurrently running instances rarely share one.
func newSnowflakeNode(cfg config.Config) (*snowflake.Node, error) {
	node := int64(cfg.SnowflakeNode)
	if cfg.SnowflakeNode == config.SnowflakeNodeAuto {
		node = randomNode()
	}
	n, err := snowflake.NewNode(node)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", node, err)
	}
	return n, nil
}

func randomNode() int64 {
	id := uuid.New()
	mask := uint16(1)<<snowflake.NodeBits - 1
	return int64(binary.BigEndian.Uint16(id[:2]) & mask)
}

// Handler is a started application exposed as a plain http.Handler.
type Handler struct {
	app    *fx.App
	engine *gin.Engine
}

// NewHandler builds and starts the application without requiring a
// listener. Serverless mode never binds one; standalone mode also binds
// PORT.
func NewHandler(ctx context.Context, cfg config.Config, extra ...fx.Option) (*Handler, error) {
	var engine *gin.Engine

	opts := append([]fx.Option{Options(cfg), fx.Populate(&engine)}, extra...)
	fxApp := fx.New(opts...)
	if err := fxApp.Err(); err != nil {
		return nil, fmt.Errorf("build app: %w", err)
	}
	if err := fxApp.Start(ctx); err != nil {
		return nil, fmt.Errorf("start app: %w", err)
	}

	return &Handler{app: fxApp, engine: engine}, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.engine.ServeHTTP(w, r)
}

// Stop runs the shutdown hooks.
func (h *Handler) Stop(ctx context.Context) error {
	return h.app.Stop(ctx)
}
