package cache

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures a [RedisCache].
type RedisConfig struct {
	Addr     string
	Password string
	DB       int

	// DialTimeout bounds each connection attempt. Zero uses 2s.
	DialTimeout time.Duration

	// Attempts is the number of tries for an operation that fails with a
	// network error. Zero uses 3.
	Attempts int

	// Backoff is the delay before the first retry, doubled after each one.
	// Zero uses 100ms.
	Backoff time.Duration
}

// RedisCache stores entries in Redis. It is safe for concurrent use and is
// what "plategen serve" uses when several replicas share one cache.
type RedisCache struct {
	client   *redis.Client
	attempts int
	backoff  time.Duration
}

// NewRedisCache connects to Redis. The connection is checked lazily on the
// first operation; call [RedisCache.Ping] to fail fast.
func NewRedisCache(cfg RedisConfig) *RedisCache {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 2 * time.Second
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = 3
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 100 * time.Millisecond
	}
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
		MaxRetries:  -1, // retries are handled by RetryWithBackoff
	})
	return &RedisCache{client: client, attempts: cfg.Attempts, backoff: cfg.Backoff}
}

// Ping checks that the server is reachable.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.do(ctx, func() error { return c.client.Ping(ctx).Err() })
}

// Get retrieves a value from the cache.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	var hit bool
	err := c.do(ctx, func() error {
		b, err := c.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}
		data, hit = b, true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return data, hit, nil
}

// Set stores a value. A non-positive ttl never expires.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return c.do(ctx, func() error { return c.client.Set(ctx, key, data, ttl).Err() })
}

// Delete removes a value from the cache.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.do(ctx, func() error { return c.client.Del(ctx, key).Err() })
}

// Close releases the connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// do runs op with retries on network errors and wraps the final failure in
// ErrBackend.
func (c *RedisCache) do(ctx context.Context, op func() error) error {
	err := RetryWithBackoff(ctx, c.attempts, c.backoff, func() error {
		err := op()
		var netErr net.Error
		if errors.As(err, &netErr) {
			return Retryable(err)
		}
		return err
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrBackend, err)
}

var _ Cache = (*RedisCache)(nil)
