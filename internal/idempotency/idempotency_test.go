package idempotency

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/arsenal/internal/db"
)

func exercise(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	key := "1:" + uuid.NewString()

	ok, err := s.Reserve(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "first reservation")

	ok, err = s.Reserve(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "duplicate reservation")

	require.NoError(t, s.Release(ctx, key))

	ok, err = s.Reserve(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "reservation after release")

	require.NoError(t, s.Release(ctx, key))
}

func TestSQLStore(t *testing.T) {
	exercise(t, SQLStore{DB: db.NewTestDB(t)})
}

func getRedisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		t.Skipf("Redis not available: %v", err)
	}
	return client
}

func TestRedisStore(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	exercise(t, NewRedisStore(client))
}

func TestConnectRejectsBadURL(t *testing.T) {
	_, err := Connect(context.Background(), "not a url")
	assert.Error(t, err)
}
