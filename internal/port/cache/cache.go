package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates a cache miss.
var ErrNotFound = errors.New("cache: key not found")

type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
