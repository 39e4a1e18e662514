package service

import (
	"context"
	"os"
	"testing"
	"time"
	"webremote/internal/microservices/http-api/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRedisStore connects to REDIS_URL (or localhost) and skips the test
// when no server is reachable.
func newTestRedisStore(t *testing.T, ttl time.Duration) *RedisHealthStore {
	t.Helper()

	url := os.Getenv("REDIS_URL")
	if url == "" {
		url = "redis://localhost:6379"
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("Redis not available: %v", err)
	}

	key := "webremote:test:health:" + uuid.NewString()
	t.Cleanup(func() {
		client.Del(context.Background(), key)
		client.Close()
	})
	return NewRedisHealthStoreWithClient(client, key, ttl)
}

func TestRedisHealthStore_RoundTrip(t *testing.T) {
	store := newTestRedisStore(t, 0)
	ctx := context.Background()

	initial, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.InitialHealthStatus(), initial)

	require.NoError(t, store.Update(ctx, runningStatus()))

	got, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, runningStatus(), got)
}

func TestRedisHealthStore_ExpiresToInitial(t *testing.T) {
	store := newTestRedisStore(t, 200*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, store.Update(ctx, runningStatus()))

	assert.Eventually(t, func() bool {
		got, err := store.Get(ctx)
		return err == nil && got.ContainerStatus == models.ContainerUnknown
	}, 3*time.Second, 50*time.Millisecond)
}

func TestNewRedisHealthStore_InvalidURL(t *testing.T) {
	_, err := NewRedisHealthStore("not a url", "", 0)
	assert.Error(t, err)
}
