package redisx

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is the read-through cache the HTTP handlers use. Wrapping the
// client keeps handlers off the raw redis API and testable without a
// running server.
type Cache struct {
	c *redis.Client
}

func NewCache(c *redis.Client) *Cache { return &Cache{c: c} }

func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	return c.c.Get(ctx, key).Result()
}

func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.c.Set(ctx, key, value, ttl).Err()
}

func (c *Cache) Del(ctx context.Context, key string) error {
	return c.c.Del(ctx, key).Err()
}
