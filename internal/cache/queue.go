package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RefreshQueue is the list key holding pending RefreshJobs.
const RefreshQueue = "channeldeck:jobs:refresh"

// RefreshJob asks a worker to re-fetch a playlist from its source URL.
type RefreshJob struct {
	PlaylistID  string    `json:"playlist_id"`
	RequestedAt time.Time `json:"requested_at"`
}

// Enqueue appends job to the queue as JSON. Jobs are consumed in FIFO order.
func Enqueue[T any](ctx context.Context, r *Redis, queue string, job T) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("queue encode: %w", err)
	}
	return r.client.LPush(ctx, queue, data).Err()
}

// Dequeue waits up to timeout for the oldest job. A nil job with a nil error
// means the wait timed out or ctx was cancelled; callers loop and re-check ctx.
func Dequeue[T any](ctx context.Context, r *Redis, queue string, timeout time.Duration) (*T, error) {
	kv, err := r.client.BRPop(ctx, timeout, queue).Result()
	switch {
	case errors.Is(err, redis.Nil), err != nil && ctx.Err() != nil:
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("queue dequeue: %w", err)
	case len(kv) != 2:
		return nil, nil
	}
	job := new(T)
	if err := json.Unmarshal([]byte(kv[1]), job); err != nil {
		return nil, fmt.Errorf("queue decode: %w", err)
	}
	return job, nil
}

// QueueLen returns the number of pending jobs.
func QueueLen(ctx context.Context, r *Redis, queue string) (int64, error) {
	return r.client.LLen(ctx, queue).Result()
}
