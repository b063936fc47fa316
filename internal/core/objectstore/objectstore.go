package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"hotel-backoffice/internal/core/config"
)

var ErrNotFound = errors.New("object not found")

// Store keeps image bytes outside the relational store. URL is pure: it only
// formats the public address of key and does not check the object exists.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	URL(key string) string
	Delete(ctx context.Context, key string) error
}

// Open picks the driver named by c.Driver.
func Open(ctx context.Context, c config.Storage) (Store, error) {
	switch c.Driver {
	case "s3":
		return NewS3(ctx, c)
	case "memory", "":
		return NewMemory(c.PublicBaseURL), nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", c.Driver)
}

// joinURL escapes each segment of key; the key itself stays raw in the bucket.
func joinURL(base, key string) string {
	segs := strings.Split(strings.TrimLeft(key, "/"), "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.TrimRight(base, "/") + "/" + strings.Join(segs, "/")
}
