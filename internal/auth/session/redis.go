package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "session:"

// RedisBackend stores sessions in Redis so they survive restarts and can be
// shared across replicas.
type RedisBackend struct {
	client *redis.Client
}

func NewRedisBackend(url string) (*RedisBackend, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("session: parse redis url: %w", err)
	}
	return &RedisBackend{client: redis.NewClient(opts)}, nil
}

func (b *RedisBackend) Save(ctx context.Context, id string, data Data) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return b.client.Set(ctx, redisKeyPrefix+id, raw, TTL).Err()
}

func (b *RedisBackend) Get(ctx context.Context, id string) (Data, error) {
	raw, err := b.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return Data{}, ErrNoSession
	}
	if err != nil {
		return Data{}, err
	}

	var data Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return Data{}, err
	}
	return data, nil
}

func (b *RedisBackend) Delete(ctx context.Context, id string) error {
	return b.client.Del(ctx, redisKeyPrefix+id).Err()
}

func (b *RedisBackend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

func (b *RedisBackend) Close() error { return b.client.Close() }
