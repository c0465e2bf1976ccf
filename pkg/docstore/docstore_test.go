package docstore

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/juju/mgo/v3"
	"github.com/smallbiznis/labform/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
)

func TestNewDefaultsTimeout(t *testing.T) {
	c := New(config.Config{DatabaseURL: "mongodb://localhost/labform"}, zap.NewNop())
	assert.Equal(t, 10*time.Second, c.timeout)

	c = New(config.Config{DBConnectTimeout: time.Second}, zap.NewNop())
	assert.Equal(t, time.Second, c.timeout)
}

func TestSessionRequiresURL(t *testing.T) {
	c := New(config.Config{}, zap.NewNop())

	_, err := c.Session()
	assert.ErrorContains(t, err, "connection string is empty")
}

func TestSessionRedialsAfterFailure(t *testing.T) {
	c := New(config.Config{DatabaseURL: "mongodb://db.invalid/labform"}, zap.NewNop())

	calls := 0
	c.dial = func(url string, timeout time.Duration) (*mgo.Session, error) {
		calls++
		assert.Equal(t, "mongodb://db.invalid/labform", url)
		return nil, errors.New("no reachable servers")
	}

	_, err := c.Session()
	require.Error(t, err)
	_, err = c.Session()
	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestConcurrentSessionsShareOneDial(t *testing.T) {
	c := New(config.Config{DatabaseURL: "mongodb://db.invalid/labform"}, zap.NewNop())

	var calls atomic.Int32
	c.dial = func(string, time.Duration) (*mgo.Session, error) {
		calls.Add(1)
		time.Sleep(300 * time.Millisecond)
		return nil, errors.New("no reachable servers")
	}

	start := time.Now()
	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.Session()
		}(i)
	}
	wg.Wait()
	elapsed := time.Since(start)

	for _, err := range errs {
		assert.ErrorContains(t, err, "no reachable servers")
	}
	assert.Less(t, elapsed, time.Second)
	assert.Less(t, calls.Load(), int32(5))
}

func TestStartupFailureDoesNotAbort(t *testing.T) {
	c := New(config.Config{DatabaseURL: "mongodb://db.invalid/labform"}, zap.NewNop())
	c.dial = func(string, time.Duration) (*mgo.Session, error) {
		return nil, errors.New("no reachable servers")
	}

	lc := fxtest.NewLifecycle(t)
	registerHooks(lc, c)

	require.NoError(t, lc.Start(context.Background()))
	require.NoError(t, lc.Stop(context.Background()))
}
