package kvstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store over redis/go-redis/v9. Connectivity is
// probed once at construction via PING; a failed probe leaves the store
// non-nil but Available()==false, matching the original's
// RedisClient._init_client "not available" fallback rather than failing
// the whole process over an optional cache tier.
type RedisStore struct {
	client    *redis.Client
	available bool
}

// NewRedisStore connects to host:port/db with a 5-second socket timeout
// (matching the original's socket_timeout=5) and probes it with PING.
func NewRedisStore(host string, port, db int) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	available := client.Ping(ctx).Err() == nil

	return &RedisStore{client: client, available: available}
}

func (r *RedisStore) Available() bool { return r.available }

func (r *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	if !r.available {
		return "", false, nil
	}
	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kvstore: redis get: %w", err)
	}
	return val, true, nil
}

func (r *RedisStore) SetEX(ctx context.Context, key string, value string, ttl time.Duration) error {
	if !r.available {
		return nil
	}
	if err := r.client.SetEx(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("kvstore: redis setex: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if !r.available {
		return nil
	}
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("kvstore: redis del: %w", err)
	}
	return nil
}

func (r *RedisStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	if !r.available {
		return nil, nil
	}
	keys, err := r.client.Keys(ctx, pattern).Result()
	if err != nil {
		return nil, fmt.Errorf("kvstore: redis keys: %w", err)
	}
	return keys, nil
}

// Close releases the underlying connection pool.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
