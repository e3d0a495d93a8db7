// Package cache holds the Redis-backed identity cache and rate limiter.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache wraps a Redis client. It is safe for concurrent use.
type Cache struct {
	client *redis.Client
}

// Option adjusts the client options parsed from the Redis URL.
type Option func(*redis.Options)

// WithPoolSize overrides the connection pool size.
func WithPoolSize(size int) Option {
	return func(o *redis.Options) {
		if size > 0 {
			o.PoolSize = size
		}
	}
}

// New connects to redisURL and pings it once.
func New(ctx context.Context, redisURL string, opts ...Option) (*Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	opt.PoolSize = 10
	opt.MinIdleConns = 2
	opt.PoolTimeout = 4 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute
	for _, apply := range opts {
		apply(opt)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Cache{client: client}, nil
}

// NewWithClient wraps an existing client, e.g. one pointed at miniredis.
func NewWithClient(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Ping checks Redis connectivity. It backs the readiness probe.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the client's connections.
func (c *Cache) Close() error {
	return c.client.Close()
}
