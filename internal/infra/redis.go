package infra

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"

	"finai/internal/logger"
)

// NewRedis creates a redis client from a redis:// URL and verifies the connection
func NewRedis(ctx context.Context, redisURL string, log *logger.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	log.Info().Str("addr", opts.Addr).Msg("Redis connected successfully")
	return client, nil
}
