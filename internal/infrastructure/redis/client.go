package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	config "github.com/avatarctic/blog-platform/configs"
)

// NewRedisClient creates a new Redis client and verifies the connection.
func NewRedisClient(cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(Options(cfg))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// Options maps the service configuration onto go-redis client options.
func Options(cfg *config.RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:         fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolTimeout:  cfg.PoolTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

// StoreOptionsFrom builds Store options from the redis and breaker configuration.
func StoreOptionsFrom(rc *config.RedisConfig, bc *config.BreakerConfig) StoreOptions {
	return StoreOptions{
		Prefix:    rc.KeyPrefix,
		OpTimeout: rc.OpTimeout,
		Breaker: BreakerSettings{
			MinRequests:  bc.MinRequests,
			FailureRatio: bc.FailureRatio,
			Interval:     bc.Interval,
			OpenTimeout:  bc.OpenTimeout,
			HalfOpenMax:  bc.HalfOpenMax,
		},
	}
}

// NewLazyRedisClient creates a client without probing the server. Connections are dialed on first use.
func NewLazyRedisClient(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(Options(cfg))
}
