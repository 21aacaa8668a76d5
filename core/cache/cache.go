package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/avishai12321/Trackera-sub000/core/config"
	"github.com/avishai12321/Trackera-sub000/core/constants"
	"github.com/avishai12321/Trackera-sub000/core/logger"

	"github.com/redis/go-redis/v9"
)

type Cache interface {
	// AcquireSyncLock takes the per-connection advisory lock. Returns false
	// when another sync run already holds it.
	AcquireSyncLock(ctx context.Context, connectionID string, ttl time.Duration) (bool, error)
	ReleaseSyncLock(ctx context.Context, connectionID string) error

	IsTokenBlacklisted(ctx context.Context, token string) (bool, error)
	AddToTokenBlacklist(ctx context.Context, token string, ttl time.Duration) error

	Close() error
}

type redisCache struct {
	client *redis.Client
}

func NewCache(cfg config.RedisConfig) (Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis initialized successfully", "host", cfg.Host, "port", cfg.Port, "db", cfg.DB)
	return &redisCache{client: client}, nil
}

func (c *redisCache) AcquireSyncLock(ctx context.Context, connectionID string, ttl time.Duration) (bool, error) {
	ok, err := c.client.SetNX(ctx, constants.RedisKeySyncLock+connectionID, "1", ttl).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

func (c *redisCache) ReleaseSyncLock(ctx context.Context, connectionID string) error {
	return c.client.Del(ctx, constants.RedisKeySyncLock+connectionID).Err()
}

func (c *redisCache) IsTokenBlacklisted(ctx context.Context, token string) (bool, error) {
	n, err := c.client.Exists(ctx, constants.RedisKeyTokenBlacklist+token).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (c *redisCache) AddToTokenBlacklist(ctx context.Context, token string, ttl time.Duration) error {
	return c.client.Set(ctx, constants.RedisKeyTokenBlacklist+token, "1", ttl).Err()
}

func (c *redisCache) Close() error {
	return c.client.Close()
}
