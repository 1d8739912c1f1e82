package redis

import (
	"context"
	"time"
)

// ClientInterface is the cache surface consumers depend on, so tests can
// substitute an in-memory fake for a live server.
type ClientInterface interface {
	SetWithExpiration(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	Expire(ctx context.Context, key string, expiration time.Duration) error
	Close() error
}

var _ ClientInterface = (*Client)(nil)
