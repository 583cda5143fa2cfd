package database

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/yukikurage/task-tracker-api/internal/config"
)

// NewRedisClient connects to the Redis server holding sessions and
// verifies it answers.
func NewRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	options := &redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		DB:       0,
	}

	// Managed Redis in production requires TLS
	if cfg.IsProduction() && cfg.RedisPassword != "" {
		options.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
	}

	client := redis.NewClient(options)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}
