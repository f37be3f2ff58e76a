package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Get and GetPage when the key is absent.
var ErrMiss = errors.New("cache miss")

const pageKeyPrefix = "page:"

type Cache struct {
	client  *redis.Client
	pageTTL time.Duration
}

func NewCache(client *redis.Client, pageTTL time.Duration) *Cache {
	return &Cache{client: client, pageTTL: pageTTL}
}

func (c *Cache) Get(ctx context.Context, key string, dest any) error {
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return fmt.Errorf("cache get %s: %w", key, err)
	}
	return json.Unmarshal([]byte(val), dest)
}

func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal value: %w", err)
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	return c.client.Del(ctx, keys...).Err()
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// PageKey is the cache key of a rendered page path such as /posts/{id}.
func PageKey(path string) string {
	return pageKeyPrefix + path
}

func (c *Cache) GetPage(ctx context.Context, path string, dest any) error {
	return c.Get(ctx, PageKey(path), dest)
}

func (c *Cache) SetPage(ctx context.Context, path string, value any) error {
	return c.Set(ctx, PageKey(path), value, c.pageTTL)
}

// Revalidate drops the cached page so the next read renders it fresh.
func (c *Cache) Revalidate(ctx context.Context, path string) error {
	if err := c.Delete(ctx, PageKey(path)); err != nil {
		return fmt.Errorf("revalidate %s: %w", path, err)
	}
	return nil
}
