package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisSlot keeps the snapshot under a single Redis key.
type RedisSlot struct {
	client *redis.Client
	key    string
	addr   string
}

// NewRedisSlot connects to redisURL and checks the connection.
func NewRedisSlot(ctx context.Context, redisURL, key string) (*RedisSlot, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisSlotWithClient(client, key), nil
}

// NewRedisSlotWithClient wraps an existing client.
func NewRedisSlotWithClient(client *redis.Client, key string) *RedisSlot {
	return &RedisSlot{client: client, key: key, addr: client.Options().Addr}
}

func (r *RedisSlot) Load(ctx context.Context) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", r.key, err)
	}
	return data, true, nil
}

func (r *RedisSlot) Save(ctx context.Context, data []byte) error {
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", r.key, err)
	}
	return nil
}

func (r *RedisSlot) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("failed to delete %s: %w", r.key, err)
	}
	return nil
}

func (r *RedisSlot) Describe() string {
	return "redis:" + r.addr + "/" + r.key
}

// Close closes the Redis connection
func (r *RedisSlot) Close() error {
	return r.client.Close()
}
