package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "checkin:table:"

// Redis is a TableCache shared by every server process pointing at the same
// Redis instance
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedis connects to the Redis instance at redisURL
func NewRedis(redisURL string, ttl time.Duration) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	return &Redis{rdb: redis.NewClient(opts), ttl: ttl}, nil
}

// Get returns the cached rows; Redis errors are logged and count as a miss
func (r *Redis) Get(ctx context.Context, key string) ([][]string, bool) {
	data, err := r.rdb.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("Table cache read failed", "key", key, "error", err)
		}
		return nil, false
	}

	var rows [][]string
	if err := json.Unmarshal(data, &rows); err != nil {
		slog.Warn("Table cache entry is corrupt", "key", key, "error", err)
		return nil, false
	}
	return rows, true
}

func (r *Redis) Set(ctx context.Context, key string, rows [][]string) error {
	data, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("failed to marshal rows: %w", err)
	}
	if err := r.rdb.Set(ctx, keyPrefix+key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write table cache: %w", err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, keyPrefix+key).Err()
}

// Close closes the Redis client connection
func (r *Redis) Close() error {
	return r.rdb.Close()
}
