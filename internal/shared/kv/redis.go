package kv

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore persiste valores JSON no Redis. TTL zero = sem expiração.
type RedisStore[T any] struct {
	R   *redis.Client
	TTL time.Duration
}

func NewRedisStore[T any](r *redis.Client, ttl time.Duration) *RedisStore[T] {
	return &RedisStore[T]{R: r, TTL: ttl}
}

func (s *RedisStore[T]) Load(ctx context.Context, key string, def T) (T, error) {
	b, err := s.R.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return def, nil
	}
	if err != nil {
		return def, err
	}
	return decode(b, def)
}

func (s *RedisStore[T]) Save(ctx context.Context, key string, v T) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.R.Set(ctx, key, b, s.TTL).Err()
}
