package status

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/codariq/sentidoc/internal/models"
)

const (
	statusKeyPrefix = "task_status:"
	statusTTL       = 24 * time.Hour
)

// RedisTracker persists task statuses in Redis so they survive process
// restarts and are visible across replicas.
type RedisTracker struct {
	client *redis.Client
}

// NewRedisTracker connects to Redis and verifies the connection.
func NewRedisTracker(ctx context.Context, addr, password string, db int) (*RedisTracker, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisTracker{client: client}, nil
}

// Set stores the status as JSON with a 24 hour expiry.
func (r *RedisTracker) Set(ctx context.Context, st *models.TaskStatus) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to marshal task status: %w", err)
	}
	return r.client.Set(ctx, statusKeyPrefix+st.TaskID, data, statusTTL).Err()
}

// Get fetches a status, returning ErrNotFound for unknown or expired tasks.
func (r *RedisTracker) Get(ctx context.Context, taskID string) (*models.TaskStatus, error) {
	data, err := r.client.Get(ctx, statusKeyPrefix+taskID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch task status: %w", err)
	}
	var st models.TaskStatus
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task status: %w", err)
	}
	return &st, nil
}

// Close releases the Redis connection.
func (r *RedisTracker) Close() error {
	return r.client.Close()
}
