package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"StockSentinel/internal/model"
)

const keyPrefix = "stocksentinel:"

// RedisConfig holds connection parameters for the Redis cache.
type RedisConfig struct {
	Addr       string
	Password   string
	DB         int
	PoolSize   int
	MaxRetries int
}

// Redis stores series as JSON strings with a per-key expiry.
type Redis struct {
	rdb *redis.Client
}

// NewRedis connects and pings Redis, returning an error when it is unreachable.
func NewRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:       cfg.Addr,
		Password:   cfg.Password,
		DB:         cfg.DB,
		PoolSize:   cfg.PoolSize,
		MaxRetries: cfg.MaxRetries,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return &Redis{rdb: rdb}, nil
}

func (r *Redis) Get(ctx context.Context, key string) (model.Series, error) {
	data, err := r.rdb.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("redis: get %s: %w", key, err)
	}
	var bars model.Series
	if err := json.Unmarshal(data, &bars); err != nil {
		return nil, fmt.Errorf("redis: unmarshal %s: %w", key, err)
	}
	return bars, nil
}

func (r *Redis) Set(ctx context.Context, key string, bars model.Series, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(bars)
	if err != nil {
		return fmt.Errorf("redis: marshal %s: %w", key, err)
	}
	if err := r.rdb.Set(ctx, keyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis: set %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}
