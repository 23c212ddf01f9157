package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisCache is an implementation of the Cache interface using Redis.
type RedisCache struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

// NewRedisCacheConfig contains options for creating a new RedisCache.
type NewRedisCacheConfig struct {
	Address   string
	Password  string
	DB        int
	KeyPrefix string
}

// NewRedisCache creates a new RedisCache and pings the server.
func NewRedisCache(ctx context.Context, cfg NewRedisCacheConfig, logger *zap.Logger) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Address, err)
	}

	logger.Info("Connected to Redis", zap.String("address", cfg.Address), zap.Int("db", cfg.DB))
	return &RedisCache{client: rdb, prefix: cfg.KeyPrefix, logger: logger}, nil
}

// Get retrieves a value from Redis.
func (r *RedisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, r.prefix+key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		r.logger.Warn("Redis GET failed", zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("redis get %q: %w", key, err)
	}
	return val, nil
}

// Set stores a value in Redis. A zero expiration keeps the key forever.
func (r *RedisCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	if err := r.client.Set(ctx, r.prefix+key, value, expiration).Err(); err != nil {
		r.logger.Warn("Redis SET failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

// Delete removes a value from Redis.
func (r *RedisCache) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		r.logger.Warn("Redis DEL failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("redis del %q: %w", key, err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (r *RedisCache) Close() error {
	return r.client.Close()
}
