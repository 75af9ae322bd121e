package task

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	statusKeyPrefix = "job:"
	errorKeyPrefix  = "err:"
)

// RedisStore keeps task status in Redis under job:<id> with failure detail in
// err:<id>. It lets several service instances share one results directory.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, addr, password string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStore{client: client}, nil
}

// Put registers a task under its status key.
func (s *RedisStore) Put(ctx context.Context, t Task) error {
	status := t.Status
	if status == "" {
		status = StatusPending
	}
	if err := s.client.Set(ctx, statusKeyPrefix+t.ID, string(status), 0).Err(); err != nil {
		return fmt.Errorf("redis put: %w", err)
	}
	return nil
}

// SetStatus updates the status key and writes or clears the error detail.
func (s *RedisStore) SetStatus(ctx context.Context, id string, status Status, detail string) error {
	if err := s.client.Set(ctx, statusKeyPrefix+id, string(status), 0).Err(); err != nil {
		return fmt.Errorf("redis set status: %w", err)
	}
	if detail == "" {
		if err := s.client.Del(ctx, errorKeyPrefix+id).Err(); err != nil {
			return fmt.Errorf("redis clear error detail: %w", err)
		}
		return nil
	}
	if err := s.client.Set(ctx, errorKeyPrefix+id, detail, 0).Err(); err != nil {
		return fmt.Errorf("redis set error detail: %w", err)
	}
	return nil
}

// Get reconstructs the stored state for a task ID.
func (s *RedisStore) Get(ctx context.Context, id string) (Task, bool, error) {
	status, err := s.client.Get(ctx, statusKeyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return Task{}, false, nil
	}
	if err != nil {
		return Task{}, false, fmt.Errorf("redis get: %w", err)
	}
	t := Task{ID: id, Status: Status(status)}
	detail, err := s.client.Get(ctx, errorKeyPrefix+id).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return Task{}, false, fmt.Errorf("redis get error detail: %w", err)
	}
	t.Error = detail
	return t, true, nil
}
