package ports

import (
	"context"
	"time"
)

// Cache is a small persistent key-value store. The scheduler keeps per-job
// bookkeeping (last run, last error) in it. A ttl of zero never expires.
type Cache interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
