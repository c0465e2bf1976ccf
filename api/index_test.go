package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/smallbiznis/labform/internal/app"
	"github.com/smallbiznis/labform/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func TestHandlerServesWithoutListener(t *testing.T) {
	t.Setenv("DATABASE_TYPE", "sqlite")
	t.Setenv("DATABASE_URL", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	t.Setenv("DATABASE_MAX_OPEN_CONN", "1")
	t.Setenv("DATABASE_METRICS_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "error")

	resp := httptest.NewRecorder()
	Handler(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	Handler(resp, httptest.NewRequest(http.MethodPost, "/api/labform", strings.NewReader(`{"carNo":"KA01"}`)))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = httptest.NewRecorder()
	Handler(resp, httptest.NewRequest(http.MethodGet, "/api/labform?carNo=KA01", nil))
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), `"carNo":"KA01"`) {
		t.Fatalf("unexpected list response %d: %s", resp.Code, resp.Body.String())
	}
}

func TestHandlerRetriesFailedBootstrap(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")

	mu.Lock()
	previous := handler
	handler = nil
	mu.Unlock()
	t.Cleanup(func() {
		mu.Lock()
		handler = previous
		newHandler = app.NewHandler
		mu.Unlock()
	})

	calls := 0
	newHandler = func(context.Context, config.Config, ...fx.Option) (*app.Handler, error) {
		calls++
		return nil, errors.New("database unreachable")
	}

	for i := 0; i < 2; i++ {
		resp := httptest.NewRecorder()
		Handler(resp, httptest.NewRequest(http.MethodGet, "/", nil))
		if resp.Code != http.StatusInternalServerError {
			t.Fatalf("expected status 500, got %d", resp.Code)
		}
		if resp.Body.String() != `{"error":"Internal server error"}` {
			t.Fatalf("unexpected body %s", resp.Body.String())
		}
	}
	if calls != 2 {
		t.Fatalf("expected bootstrap to be attempted twice, got %d", calls)
	}
}

func TestFallbackLoggerAlwaysReportsErrors(t *testing.T) {
	for _, level := range []string{"error", "debug", "not-a-level"} {
		log := fallbackLogger(config.Config{LogLevel: level})
		if !log.Core().Enabled(zap.ErrorLevel) {
			t.Fatalf("level %q: error logs disabled", level)
		}
	}
}
