package redisx

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Denylist records revoked token ids until the token would have expired anyway.
type Denylist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	Revoked(ctx context.Context, jti string) (bool, error)
}

type RedisDenylist struct{ c *Client }

func NewDenylist(c *Client) Denylist {
	if c == nil {
		return NopDenylist{}
	}
	return &RedisDenylist{c: c}
}

func (d *RedisDenylist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return d.c.RDB.Set(ctx, d.c.Key("revoked", jti), 1, ttl).Err()
}

func (d *RedisDenylist) Revoked(ctx context.Context, jti string) (bool, error) {
	err := d.c.RDB.Get(ctx, d.c.Key("revoked", jti)).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, redis.Nil):
		return false, nil
	}
	return false, err
}

// NopDenylist is used when Redis is disabled: logout succeeds, tokens live to expiry.
type NopDenylist struct{}

func (NopDenylist) Revoke(context.Context, string, time.Duration) error { return nil }
func (NopDenylist) Revoked(context.Context, string) (bool, error)       { return false, nil }
