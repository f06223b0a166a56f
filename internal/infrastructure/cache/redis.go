package cache

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisStatusCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func NewRedisStatusCache(client *redis.Client) *RedisStatusCache {
	return &RedisStatusCache{
		client:  client,
		baseTTL: 15 * time.Minute,
	}
}

func (r *RedisStatusCache) GetStatus(ctx context.Context, orderID string) (string, error) {
	status, err := r.client.Get(ctx, cacheKey(orderID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	if err != nil {
		return "", fmt.Errorf("redis get failed: %w", err)
	}
	return status, nil
}

func (r *RedisStatusCache) SetStatus(ctx context.Context, orderID, status string) error {
	// Jitter spreads expiry so reopened views don't all miss at once.
	ttl := r.baseTTL + time.Duration(rand.Intn(5))*time.Minute
	if err := r.client.Set(ctx, cacheKey(orderID), status, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisStatusCache) Delete(ctx context.Context, orderID string) error {
	if err := r.client.Del(ctx, cacheKey(orderID)).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}

func cacheKey(orderID string) string {
	return "order-status:" + orderID
}
