package redisx

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"hotel-backoffice/internal/core/config"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := &Client{RDB: redis.NewClient(&redis.Options{Addr: mr.Addr()}), Prefix: "test"}
	t.Cleanup(func() { _ = c.RDB.Close() })
	return c, mr
}

func TestOpenDisabled(t *testing.T) {
	c, err := Open(context.Background(), config.Redis{}, nil)
	if err != nil || c != nil {
		t.Fatalf("expected disabled client, got %v %v", c, err)
	}
	if _, ok := NewDenylist(c).(NopDenylist); !ok {
		t.Fatalf("nil client should yield NopDenylist")
	}
}

func TestOpenEmbedded(t *testing.T) {
	c, err := Open(context.Background(), config.Redis{Embedded: true, KeyPrefix: "hotel"}, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer c.Close()
	if err := c.RDB.Set(context.Background(), c.Key("k"), "v", 0).Err(); err != nil {
		t.Fatalf("set: %v", err)
	}
	if c.Key("a", "b") != "hotel:a:b" {
		t.Fatalf("key: %s", c.Key("a", "b"))
	}
}

func TestDenylistRevokeExpires(t *testing.T) {
	c, mr := newTestClient(t)
	d := NewDenylist(c)
	ctx := context.Background()

	if ok, err := d.Revoked(ctx, "jti-1"); err != nil || ok {
		t.Fatalf("fresh jti revoked=%v err=%v", ok, err)
	}
	if err := d.Revoke(ctx, "jti-1", time.Minute); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if ok, _ := d.Revoked(ctx, "jti-1"); !ok {
		t.Fatalf("jti not revoked")
	}
	mr.FastForward(2 * time.Minute)
	if ok, _ := d.Revoked(ctx, "jti-1"); ok {
		t.Fatalf("revocation outlived token ttl")
	}
}

func TestTokenBucketBlocksThenRefills(t *testing.T) {
	c, _ := newTestClient(t)
	b := NewTokenBucket(c, 1, 2)
	base := time.UnixMilli(1_700_000_000_000)
	b.now = func() time.Time { return base }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		d, err := b.Allow(ctx, "ip:1.2.3.4")
		if err != nil || !d.Allowed {
			t.Fatalf("request %d: %+v %v", i, d, err)
		}
	}
	d, err := b.Allow(ctx, "ip:1.2.3.4")
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if d.Allowed || d.RetryAfter <= 0 {
		t.Fatalf("third request should be throttled: %+v", d)
	}
	if d2, _ := b.Allow(ctx, "ip:5.6.7.8"); !d2.Allowed {
		t.Fatalf("other key throttled")
	}

	b.now = func() time.Time { return base.Add(1100 * time.Millisecond) }
	if d, _ := b.Allow(ctx, "ip:1.2.3.4"); !d.Allowed {
		t.Fatalf("bucket did not refill: %+v", d)
	}
}
