package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"pump-match/shared/logger"
)

// RedisConfig holds connection parameters for the Redis-backed cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisCache implements Cache on go-redis. Entries expire on the fixed TTL
// supplied at construction.
type RedisCache struct {
	rdb       *redis.Client
	ttl       time.Duration
	appLogger *logger.Logger
}

// NewRedisCache connects to Redis and pings it to verify connectivity.
func NewRedisCache(ctx context.Context, cfg RedisConfig, appLogger *logger.Logger) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed for %s: %w", cfg.Addr, err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	appLogger.Info("Redis cache initialized", zap.String("addr", cfg.Addr), zap.Duration("ttl", ttl))
	return &RedisCache{rdb: rdb, ttl: ttl, appLogger: appLogger}, nil
}

// Get returns the cached value, treating every backend error as a miss.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.appLogger.Warn("Cache read failed, falling through to live computation", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return data, true
}

// Set stores the value under the fixed TTL. Write failures are logged and
// dropped.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte) {
	if err := c.rdb.Set(ctx, key, value, c.ttl).Err(); err != nil {
		c.appLogger.Warn("Cache write failed, result not memoized", zap.String("key", key), zap.Error(err))
	}
}

// Close closes the underlying Redis connection.
func (c *RedisCache) Close() error {
	return c.rdb.Close()
}
