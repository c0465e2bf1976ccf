// Package docstore holds the process-wide MongoDB session.
package docstore

import (
	"context"
	"sync"
	"time"

	"github.com/juju/errors"
	"github.com/juju/mgo/v3"
	"github.com/smallbiznis/labform/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var Module = fx.Module("docstore",
	fx.Provide(New),
	fx.Invoke(registerHooks),
)

// Client dials lazily and redials after a failed attempt, so a store that
// is down at startup does not keep the process from serving. Concurrent
// callers share a single in-flight dial.
type Client struct {
	url     string
	timeout time.Duration
	log     *zap.Logger

	mu      sync.Mutex
	session *mgo.Session
	dialing singleflight.Group
	dial    func(url string, timeout time.Duration) (*mgo.Session, error)
}

func New(cfg config.Config, log *zap.Logger) *Client {
	timeout := cfg.DBConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		url:     cfg.DatabaseURL,
		timeout: timeout,
		log:     log,
		dial:    mgo.DialWithTimeout,
	}
}

// Session returns a copy of the shared session; callers must Close it.
func (c *Client) Session() (*mgo.Session, error) {
	if session := c.copySession(); session != nil {
		return session, nil
	}
	if c.url == "" {
		return nil, errors.New("mongo connection string is empty")
	}

	_, err, _ := c.dialing.Do("session", func() (interface{}, error) {
		c.mu.Lock()
		ready := c.session != nil
		c.mu.Unlock()
		if ready {
			return nil, nil
		}

		session, err := c.dial(c.url, c.timeout)
		if err != nil {
			return nil, errors.Annotate(err, "dialling mongo")
		}
		session.SetMode(mgo.Monotonic, true)

		c.mu.Lock()
		c.session = session
		c.mu.Unlock()
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	session := c.copySession()
	if session == nil {
		return nil, errors.New("mongo client closed")
	}
	return session, nil
}

func (c *Client) copySession() *mgo.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	return c.session.Copy()
}

// Close releases the shared session.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		c.session.Close()
		c.session = nil
	}
}

func registerHooks(lc fx.Lifecycle, c *Client) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			session, err := c.Session()
			if err != nil {
				c.log.Error("mongo connection error", zap.Error(err))
				return nil
			}
			session.Close()
			c.log.Info("mongo connected")
			return nil
		},
		OnStop: func(context.Context) error {
			c.Close()
			return nil
		},
	})
}
