package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds the connection settings of the rate cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

// NewRedisClient creates a Redis client from cfg.
func NewRedisClient(cfg RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

// PingRedis checks the connection.
func PingRedis(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

// RateCache persists the last good USD exchange rate in Redis so a restart
// does not fall back to the configured default.
type RateCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRateCache returns a cache for the rate of the local currency. A zero
// ttl keeps the value forever.
func NewRateCache(client *redis.Client, local string, ttl time.Duration) *RateCache {
	return &RateCache{
		client: client,
		key:    "fx:usd:" + strings.ToUpper(local),
		ttl:    ttl,
	}
}

// LoadRate returns the cached rate. A missing key is reported as an error.
func (c *RateCache) LoadRate(ctx context.Context) (float64, error) {
	rate, err := c.client.Get(ctx, c.key).Float64()
	if err == redis.Nil {
		return 0, fmt.Errorf("rate cache: %s not set", c.key)
	}
	if err != nil {
		return 0, fmt.Errorf("rate cache get: %w", err)
	}
	return rate, nil
}

// StoreRate saves rate.
func (c *RateCache) StoreRate(ctx context.Context, rate float64) error {
	if err := c.client.Set(ctx, c.key, rate, c.ttl).Err(); err != nil {
		return fmt.Errorf("rate cache set: %w", err)
	}
	return nil
}
