// Package handler is the serverless entry point. The hosting platform
// calls Handler for every request; the application is built on the first
// call and reused while the instance stays warm.
package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/labform/internal/app"
	"github.com/smallbiznis/labform/internal/config"
	obslogger "github.com/smallbiznis/labform/internal/observability/logger"
	"go.uber.org/zap"
)

const bootstrapTimeout = 15 * time.Second

var (
	mu      sync.Mutex
	handler http.Handler

	newHandler = app.NewHandler
)

// Handler serves one invocation.
func Handler(w http.ResponseWriter, r *http.Request) {
	h, err := bootstrap(r.Context())
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Internal server error"}`))
		return
	}
	h.ServeHTTP(w, r)
}

// bootstrap retries on the next invocation after a failure.
func bootstrap(ctx context.Context) (http.Handler, error) {
	mu.Lock()
	defer mu.Unlock()

	if handler != nil {
		return handler, nil
	}

	cfg := config.Load()
	cfg.Mode = config.ModeServerless
	gin.SetMode(gin.ReleaseMode)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), bootstrapTimeout)
	defer cancel()

	h, err := newHandler(ctx, cfg)
	if err != nil {
		// The application logger is never built when startup fails.
		log := fallbackLogger(cfg)
		log.Error("bootstrap failed", zap.Error(err))
		_ = log.Sync()
		return nil, err
	}
	handler = h
	return handler, nil
}

func fallbackLogger(cfg config.Config) *zap.Logger {
	log, err := obslogger.New(nil, obslogger.Config{
		ServiceName: cfg.AppName,
		Environment: cfg.Environment,
		Version:     cfg.AppVersion,
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
	})
	if err == nil {
		return log
	}
	if log, err = zap.NewProduction(); err == nil {
		return log
	}
	return zap.NewNop()
}
