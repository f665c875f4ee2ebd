package cacherepo

import (
	"context"
	"time"
)

// Cache is the subset of a key/value store the cache repositories use. A
// missing key is not an error: Result returns the zero value instead.
type Cache interface {
	Get(ctx context.Context, key string) CacheResponse[string]
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) CacheResponse[string]
	Del(ctx context.Context, keys ...string) CacheResponse[int64]
	Expire(ctx context.Context, key string, expiration time.Duration) CacheResponse[bool]
	Incr(ctx context.Context, key string) CacheResponse[int64]
	// SetIfUnchanged writes key only while guardKey still holds guard, where
	// a missing guardKey counts as "". Result reports whether it wrote.
	SetIfUnchanged(ctx context.Context, guardKey string, guard string, key string, value interface{}, expiration time.Duration) CacheResponse[bool]
}

type CacheResponse[T any] interface {
	Err() error
	Result() (T, error)
}
