package redisx

import (
	"context"
	"fmt"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"hotel-backoffice/internal/core/config"
)

// Client owns the go-redis handle and, when running embedded, the miniredis behind it.
type Client struct {
	RDB    *redis.Client
	Prefix string

	mini *miniredis.Miniredis
}

// Open returns nil, nil when Redis is disabled (no addr and not embedded).
func Open(ctx context.Context, c config.Redis, l *zap.Logger) (*Client, error) {
	cl := &Client{Prefix: c.KeyPrefix}
	switch {
	case c.Addr != "":
		cl.RDB = redis.NewClient(&redis.Options{Addr: c.Addr, Password: c.Password, DB: c.DB})
	case c.Embedded:
		mr, err := miniredis.Run()
		if err != nil {
			return nil, fmt.Errorf("start embedded redis: %w", err)
		}
		cl.mini = mr
		cl.RDB = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	default:
		return nil, nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := cl.RDB.Ping(pingCtx).Err(); err != nil {
		_ = cl.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	if l != nil {
		l.Info("redis connected", zap.String("addr", cl.RDB.Options().Addr), zap.Bool("embedded", cl.mini != nil))
	}
	return cl, nil
}

// Key joins the configured prefix and parts with ':'.
func (c *Client) Key(parts ...string) string {
	k := c.Prefix
	for _, p := range parts {
		if k != "" {
			k += ":"
		}
		k += p
	}
	return k
}

func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	var err error
	if c.RDB != nil {
		err = c.RDB.Close()
	}
	if c.mini != nil {
		c.mini.Close()
	}
	return err
}
