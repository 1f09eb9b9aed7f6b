package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache struct{ R *redis.Client }

func New(r *redis.Client) *Cache { return &Cache{R: r} }

func keyGame(gameID string) string  { return "catalog:game:" + gameID }
func keyProps(gameID string) string { return "catalog:props:" + gameID }

func (c *Cache) get(ctx context.Context, key string, dst any) (bool, error) {
	b, err := c.R.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(b, dst)
}

func (c *Cache) set(ctx context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.R.Set(ctx, key, b, ttl).Err()
}

func (c *Cache) GetGame(ctx context.Context, gameID string, dst any) (bool, error) {
	return c.get(ctx, keyGame(gameID), dst)
}

func (c *Cache) SetGame(ctx context.Context, gameID string, v any, ttl time.Duration) error {
	return c.set(ctx, keyGame(gameID), v, ttl)
}

func (c *Cache) GetProps(ctx context.Context, gameID string, dst any) (bool, error) {
	return c.get(ctx, keyProps(gameID), dst)
}

func (c *Cache) SetProps(ctx context.Context, gameID string, v any, ttl time.Duration) error {
	return c.set(ctx, keyProps(gameID), v, ttl)
}
