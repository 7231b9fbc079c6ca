package providers

import (
	"context"
	"errors"
)

// ErrCacheMiss is returned by Get when the key does not exist
var ErrCacheMiss = errors.New("cache miss")

// CacheProvider defines the interface for caching operations
type CacheProvider interface {
	// Get retrieves a value from cache; ErrCacheMiss when absent
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in cache with expiration
	Set(ctx context.Context, key string, value []byte, expirationSeconds int) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// DeletePattern removes every key matching a glob pattern
	DeletePattern(ctx context.Context, pattern string) error

	// Exists checks if a key exists in cache
	Exists(ctx context.Context, key string) (bool, error)
}

// HTTPCachePrefix prefixes keys written by the HTTP response cache
const HTTPCachePrefix = "http:cache:"

// MechanicCacheTTL is how long a single mechanic record stays cached, in seconds
const MechanicCacheTTL = 600

// MechanicCacheKey is the cache key of one stored mechanic record
func MechanicCacheKey(id string) string {
	return "mechanic:" + id
}
