package redis

import "errors"

// Domain-specific errors for cache operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrCacheMiss is returned when a key is not present in the cache.
	// A miss is an expected outcome, not a failure.
	ErrCacheMiss = errors.New("redis: cache miss")

	// ErrConnectionFailed is returned when the initial connection attempt fails.
	ErrConnectionFailed = errors.New("redis: connection failed")
)
