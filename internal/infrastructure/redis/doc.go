// Package redis provides Redis connectivity for sensorgate.
//
// The gateway uses Redis for exactly one thing: a volatile cache in
// front of the SQLite information store. Cached entries carry a TTL so
// stale data is bounded even if an invalidation is missed.
//
// A Redis outage degrades performance, never correctness: the
// information store falls back to SQLite when the cache is unavailable.
//
// Usage:
//
//	cache, err := redis.Connect(cfg.Redis)
//	if err != nil {
//	    // degraded mode - callers may continue without a cache
//	}
//	defer cache.Close()
//
//	value, err := cache.Get(ctx, "information:gateway-01")
//	if errors.Is(err, redis.ErrCacheMiss) {
//	    // fall through to the durable store
//	}
package redis
