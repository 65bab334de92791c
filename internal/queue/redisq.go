// internal/queue/redisq.go
package queue

import (
	"context"
	"time"

	r "github.com/redis/go-redis/v9"
)

// RedisQ dispatches claimed-to-be-processed job IDs to worker processes.
// Delivery is at-least-once: the Postgres job row stays the source of
// truth and the claim there is the idempotency gate.
type RedisQ struct {
	rdb  *r.Client
	name string
}

func New(rdb *r.Client, name string) *RedisQ {
	return &RedisQ{rdb: rdb, name: name}
}

func (q *RedisQ) Enqueue(ctx context.Context, jobID string) error {
	return q.rdb.LPush(ctx, "queue:"+q.name, jobID).Err()
}

// Dequeue blocks up to the given duration and returns the next job ID,
// or "" when the wait timed out.
func (q *RedisQ) Dequeue(ctx context.Context, block time.Duration) (string, error) {
	res, err := q.rdb.BRPop(ctx, block, "queue:"+q.name).Result()
	if err != nil {
		if err == r.Nil {
			return "", nil
		}
		return "", err
	}
	if len(res) == 2 {
		return res[1], nil
	}
	return "", nil
}
