package service

import (
	"context"
	"fmt"
	"strconv"
	"time"
	"webremote/internal/microservices/http-api/models"

	"github.com/redis/go-redis/v9"
)

const healthKey = "webremote:health"

// RedisHealthStore keeps the latest status in a single Redis hash so that
// several relay instances report the same value.
type RedisHealthStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration // 0 keeps the hash forever
}

// NewRedisHealthStore connects to redisURL and verifies the connection.
// A non-empty password overrides the one in the URL.
func NewRedisHealthStore(redisURL, password string, ttl time.Duration) (*RedisHealthStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	if password != "" {
		opts.Password = password
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	rdb := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisHealthStoreWithClient(rdb, healthKey, ttl), nil
}

func NewRedisHealthStoreWithClient(client *redis.Client, key string, ttl time.Duration) *RedisHealthStore {
	return &RedisHealthStore{client: client, key: key, ttl: ttl}
}

func (r *RedisHealthStore) Update(ctx context.Context, status models.HealthStatus) error {
	fields := map[string]any{
		"connected":         strconv.FormatBool(status.Connected),
		"latency":           status.Latency,
		"up_time":           status.UpTime,
		"container_status":  string(status.ContainerStatus),
		"last_message_time": status.LastMessageTime,
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, r.key, fields)
		if r.ttl > 0 {
			pipe.Expire(ctx, r.key, r.ttl)
		} else {
			pipe.Persist(ctx, r.key)
		}
		return nil
	})
	return err
}

func (r *RedisHealthStore) Get(ctx context.Context) (models.HealthStatus, error) {
	fields, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return models.HealthStatus{}, err
	}
	if len(fields) == 0 {
		// never written, or expired
		return models.InitialHealthStatus(), nil
	}

	status := models.HealthStatus{
		ContainerStatus: models.ContainerStatus(fields["container_status"]),
	}
	if status.ContainerStatus == "" {
		status.ContainerStatus = models.ContainerUnknown
	}
	if v, ok := fields["connected"]; ok {
		if status.Connected, err = strconv.ParseBool(v); err != nil {
			return models.HealthStatus{}, fmt.Errorf("invalid connected field %q: %w", v, err)
		}
	}
	for name, target := range map[string]*int64{
		"latency":           &status.Latency,
		"up_time":           &status.UpTime,
		"last_message_time": &status.LastMessageTime,
	} {
		v, ok := fields[name]
		if !ok {
			continue
		}
		if *target, err = strconv.ParseInt(v, 10, 64); err != nil {
			return models.HealthStatus{}, fmt.Errorf("invalid %s field %q: %w", name, v, err)
		}
	}
	return status, nil
}

func (r *RedisHealthStore) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Close()
}
