// Package cache keeps slow-changing catalog data (brands, the category tree
// and portal page types) in Redis so collection pages do not hit the catalog
// on every request.
package cache

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned by Store.Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// Store is a byte-oriented key/value store with expiry.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisStore is a Store backed by Redis. Entries expire after the requested
// TTL plus up to maxJitter, so keys written together do not expire together.
type RedisStore struct {
	client    *redis.Client
	maxJitter time.Duration
}

// NewRedisStore creates a RedisStore.
func NewRedisStore(client *redis.Client, maxJitter time.Duration) *RedisStore {
	return &RedisStore{client: client, maxJitter: maxJitter}
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return data, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if r.maxJitter > 0 {
		ttl += rand.N(r.maxJitter)
	}
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}
