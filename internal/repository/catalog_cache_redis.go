package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisCatalogCache struct {
	client *redis.Client
}

func NewRedisCatalogCache(client *redis.Client) CatalogCache {
	return &redisCatalogCache{client: client}
}

func (c *redisCatalogCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *redisCatalogCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return val, err
}

func (c *redisCatalogCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}
