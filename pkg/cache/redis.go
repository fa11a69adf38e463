package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores entries in Redis under a key prefix. TTLs are enforced by
// Redis itself.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// RedisOptions configures [NewRedisCache].
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	// Prefix is prepended to every key. Defaults to "heightcompare:".
	Prefix string
}

// NewRedisCache connects to Redis and verifies the connection with a ping,
// retrying transient failures.
func NewRedisCache(ctx context.Context, opts RedisOptions) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "heightcompare:"
	}

	err := RetryWithBackoff(ctx, func() error {
		if err := client.Ping(ctx).Err(); err != nil {
			return Retryable(fmt.Errorf("%w: redis ping %s: %v", ErrNetwork, opts.Addr, err))
		}
		return nil
	})
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	return &RedisCache{client: client, prefix: prefix}, nil
}

// NewRedisCacheFromClient wraps an existing client without pinging it.
func NewRedisCacheFromClient(client *redis.Client, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

// Client exposes the underlying client so other stores can share it.
func (c *RedisCache) Client() *redis.Client { return c.client }

// Get retrieves a value.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return data, true, nil
}

// Set stores a value; ttl <= 0 keeps it until deleted.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := c.client.Set(ctx, c.prefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes a value.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Close closes the client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

var _ Cache = (*RedisCache)(nil)
