package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisNamespace = "sanctuary"

type redisCmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Del(context.Context, ...string) *redis.IntCmd
}

// RedisKV keeps each store document under a namespaced Redis string key with no expiry.
type RedisKV struct {
	store  redisCmdable
	raw    *redis.Client
	logger *slog.Logger
}

func OpenRedis(ctx context.Context, databaseURL string, logger *slog.Logger) (*RedisKV, error) {
	opts, err := redis.ParseURL(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = 5 * time.Second
	}

	raw := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := raw.Ping(pingCtx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}
	return &RedisKV{store: raw, raw: raw, logger: logger.With("component", "storage")}, nil
}

func (r *RedisKV) key(k string) string {
	return redisNamespace + ":" + k
}

func (r *RedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	if r == nil || r.store == nil {
		return "", false, ErrNotInitialized
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", false, ErrEmptyKey
	}
	value, err := r.store.Get(ctx, r.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

func (r *RedisKV) Set(ctx context.Context, key, value string) error {
	if r == nil || r.store == nil {
		return ErrNotInitialized
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrEmptyKey
	}
	if err := r.store.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

func (r *RedisKV) Remove(ctx context.Context, key string) error {
	if r == nil || r.store == nil {
		return ErrNotInitialized
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrEmptyKey
	}
	if err := r.store.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("remove %q: %w", key, err)
	}
	return nil
}

func (r *RedisKV) Ready(ctx context.Context) error {
	if r == nil || r.store == nil {
		return ErrNotInitialized
	}
	return r.store.Ping(ctx).Err()
}

func (r *RedisKV) Close() error {
	if r == nil || r.raw == nil {
		return nil
	}
	return r.raw.Close()
}
