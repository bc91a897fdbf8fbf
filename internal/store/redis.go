package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisKV backs the KV interface with a Redis client. Values are JSON blobs;
// TTLs and hash counters map directly onto Redis semantics.
type RedisKV struct {
	client *redis.Client
}

func NewRedisKV(client *redis.Client) *RedisKV {
	return &RedisKV{client: client}
}

func (kv *RedisKV) Get(ctx context.Context, key string, dest interface{}) error {
	payload, err := kv.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("redis get %q: %w", key, err)
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return fmt.Errorf("decode cache entry %q: %w", key, err)
	}
	return nil
}

func (kv *RedisKV) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache entry %q: %w", key, err)
	}
	if ttl < 0 {
		ttl = 0
	}
	if err := kv.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

func (kv *RedisKV) Delete(ctx context.Context, key string) error {
	if err := kv.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %q: %w", key, err)
	}
	return nil
}

func (kv *RedisKV) HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error) {
	value, err := kv.client.HIncrBy(ctx, key, field, delta).Result()
	if err != nil {
		return 0, fmt.Errorf("redis hincrby %q %q: %w", key, field, err)
	}
	return value, nil
}

func (kv *RedisKV) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	result, err := kv.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall %q: %w", key, err)
	}
	return result, nil
}

func (kv *RedisKV) Ping(ctx context.Context) error {
	return kv.client.Ping(ctx).Err()
}
