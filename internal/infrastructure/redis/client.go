package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ndtrung-dev/sensorgate/internal/infrastructure/config"
)

// connectTimeout is the maximum time to wait for the initial ping.
const connectTimeout = 5 * time.Second

// Client wraps go-redis with sensorgate-specific functionality.
//
// The gateway uses Redis as a volatile read-through cache in front of
// SQLite; every value carries a TTL so a cold cache heals itself even
// if an invalidation is ever missed.
//
// All methods are safe for concurrent use.
type Client struct {
	client *goredis.Client
}

// Connect establishes a connection to the Redis server and verifies it
// with a ping.
//
// Parameters:
//   - cfg: Redis configuration from config.yaml
//
// Returns:
//   - *Client: Connected client ready for use
//   - error: If the initial ping fails within the timeout
func Connect(cfg config.RedisConfig) (*Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	return &Client{client: client}, nil
}

// Close closes the connection to the Redis server.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}
	if err := c.client.Close(); err != nil {
		return fmt.Errorf("closing redis connection: %w", err)
	}
	return nil
}

// HealthCheck verifies the Redis connection is alive.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return nil
}

// Get retrieves the value stored at key.
// Returns ErrCacheMiss when the key does not exist.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	value, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", ErrCacheMiss
		}
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, nil
}

// Set stores value at key with the given TTL.
// A zero TTL stores the key without expiry.
func (c *Client) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Del removes the given keys. Missing keys are not an error.
func (c *Client) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
