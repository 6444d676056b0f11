package redis

import (
	"context"
	"fmt"
	"time"

	"connectsphere/config"

	"github.com/redis/go-redis/v9"
)

var client *redis.Client

// NewClient connects and pings.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	c := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return c, nil
}

// InitRedis connects and keeps the client as the package instance.
func InitRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	c, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	client = c
	return c, nil
}

// Close closes the package instance
func Close() error {
	if client != nil {
		return client.Close()
	}
	return nil
}

// HealthCheck pings the package instance
func HealthCheck(ctx context.Context) error {
	if client == nil {
		return fmt.Errorf("redis client not initialized")
	}
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis unhealthy: %w", err)
	}
	return nil
}
