package information

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ndtrung-dev/sensorgate/internal/infrastructure/redis"
)

// cacheKeyPrefix namespaces information entries in the shared Redis instance.
const cacheKeyPrefix = "information:"

// Logger defines the logging interface used by the Store.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// CacheClient is the subset of the Redis client the store needs.
type CacheClient interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Store serves identification records with a cache-aside Redis layer
// in front of the SQLite repository.
//
// The cache is strictly an accelerator: every cache failure falls back
// to the repository and is logged rather than surfaced. A nil cache
// client puts the store in durable-only mode (used when Redis is down
// at startup).
type Store struct {
	repo   Repository
	cache  CacheClient
	ttl    time.Duration
	logger Logger
}

// NewStore creates a store over the given repository and cache.
// cache may be nil to run without a caching layer.
func NewStore(repo Repository, cache CacheClient, ttl time.Duration) *Store {
	return &Store{
		repo:   repo,
		cache:  cache,
		ttl:    ttl,
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the store.
func (s *Store) SetLogger(logger Logger) {
	s.logger = logger
}

// CacheKey returns the Redis key for a device's record.
func CacheKey(deviceName string) string {
	return cacheKeyPrefix + deviceName
}

// Get returns the identification record for a device as a field map.
//
// Lookup order: cache, then repository, repopulating the cache on a
// miss. Repository errors surface unchanged, so ErrNotFound stays
// distinguishable from infrastructure failures.
func (s *Store) Get(ctx context.Context, deviceName string) (map[string]string, error) {
	key := CacheKey(deviceName)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key)
		switch {
		case err == nil:
			var fields map[string]string
			if err := json.Unmarshal([]byte(cached), &fields); err == nil {
				return fields, nil
			}
			// Corrupt entry: treat as a miss, the repository read below
			// will overwrite it.
			s.logger.Warn("discarding corrupt cache entry", "key", key)
		case errors.Is(err, redis.ErrCacheMiss):
			// Expected, fall through to the repository.
		default:
			s.logger.Warn("information cache read failed", "key", key, "error", err)
		}
	}

	info, err := s.repo.Get(ctx, deviceName)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("reading information record: %w", err)
	}

	fields := info.Map()
	s.populateCache(ctx, key, fields)
	return fields, nil
}

// Update applies field changes and returns the updated record.
//
// The repository write happens first; only a successful write
// invalidates the cache entry. A failed invalidation is logged and
// tolerated - the TTL bounds how long the stale entry can live.
func (s *Store) Update(ctx context.Context, deviceName string, fields map[string]string) (map[string]string, error) {
	info, err := s.repo.Update(ctx, deviceName, fields)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		key := CacheKey(deviceName)
		if err := s.cache.Del(ctx, key); err != nil {
			s.logger.Warn("information cache invalidation failed",
				"key", key,
				"error", err,
			)
		}
	}

	return info.Map(), nil
}

// populateCache stores a freshly-read record in the cache.
func (s *Store) populateCache(ctx context.Context, key string, fields map[string]string) {
	if s.cache == nil {
		return
	}

	data, err := json.Marshal(fields)
	if err != nil {
		s.logger.Error("marshalling information record for cache", "error", err)
		return
	}

	if err := s.cache.Set(ctx, key, string(data), s.ttl); err != nil {
		s.logger.Warn("information cache write failed", "key", key, "error", err)
	}
}
