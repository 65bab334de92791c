// internal/database/redis.go
package database

import (
	"context"
	"fmt"
	"time"

	r "github.com/redis/go-redis/v9"

	"github.com/batisource/sourcing-backend/internal/config"
)

// NewRedisClient connects to Redis and verifies the connection. Redis backs
// the job dispatch queue and, optionally, the shared result cache.
func NewRedisClient(cfg config.RedisConfig) (*r.Client, error) {
	client := r.NewClient(&r.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}
