// Package idempotency reserves client-supplied request keys so a retried
// mutation is applied at most once.
package idempotency

import (
	"context"
	"database/sql"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/erazemk/arsenal/internal/store"
)

// DefaultTTL is how long a successful request holds its key.
const DefaultTTL = 24 * time.Hour

const keyPrefix = "idempotency:"

// Store reserves and releases keys.
type Store interface {
	// Reserve reports false if key is already held.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// SQLStore keeps keys in the application database.
type SQLStore struct {
	DB *sql.DB
}

func (s SQLStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return store.ReserveIdempotencyKey(ctx, s.DB, keyPrefix+key, time.Now().Add(ttl))
}

func (s SQLStore) Release(ctx context.Context, key string) error {
	return store.ReleaseIdempotencyKey(ctx, s.DB, keyPrefix+key)
}

// RedisStore keeps keys in Redis so several server processes share them.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Connect parses a redis:// URL and checks the server is reachable.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, err
	}
	return rdb, nil
}

func (r *RedisStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return r.client.SetNX(ctx, keyPrefix+key, 1, ttl).Result()
}

func (r *RedisStore) Release(ctx context.Context, key string) error {
	return r.client.Del(ctx, keyPrefix+key).Err()
}
