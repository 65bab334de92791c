// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"time"

	r "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/batisource/sourcing-backend/internal/models"
)

const redisKeyPrefix = "search_cache:"

// Redis is a shared backing store for multi-instance deployments.
// Failures degrade to cache misses; the cache is an optimization, never
// a source of truth.
type Redis struct {
	rdb *r.Client
	ttl time.Duration
}

func NewRedis(rdb *r.Client, ttl time.Duration) *Redis {
	return &Redis{rdb: rdb, ttl: ttl}
}

func (c *Redis) Get(ctx context.Context, key string) (*models.TermResult, bool) {
	payload, err := c.rdb.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if err != r.Nil {
			logrus.WithError(err).Debug("Result cache read failed")
		}
		return nil, false
	}

	var result models.TermResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, false
	}
	return &result, true
}

func (c *Redis) Set(ctx context.Context, key string, result *models.TermResult) {
	payload, err := json.Marshal(result)
	if err != nil {
		return
	}

	if err := c.rdb.Set(ctx, redisKeyPrefix+key, payload, c.ttl).Err(); err != nil {
		logrus.WithError(err).Debug("Result cache write failed")
	}
}
