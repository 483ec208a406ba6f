package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	JobQueueKey    = "stackblur:job:queue"
	ResultQueueKey = "stackblur:result:queue"
)

// Job asks a worker to blur one image file.
type Job struct {
	ID      string `json:"id"`
	Input   string `json:"input"`
	Output  string `json:"output"`
	Profile string `json:"profile,omitempty"`
	Radius  int    `json:"radius,omitempty"` // overrides the profile when > 0
	Mode    string `json:"mode,omitempty"`   // overrides the profile when set
}

// Result reports the outcome of a Job.
type Result struct {
	JobID    string  `json:"job_id"`
	WorkerID string  `json:"worker_id"`
	Output   string  `json:"output,omitempty"`
	Hash     string  `json:"hash,omitempty"`
	Size     int64   `json:"size,omitempty"`
	BlurMS   float64 `json:"blur_ms"`
	Error    string  `json:"error,omitempty"`
}

// RedisQueue is a job and result queue on two Redis lists.
type RedisQueue struct {
	client *redis.Client
}

// NewRedisQueue connects to addr and checks the connection.
func NewRedisQueue(ctx context.Context, addr, password string, db int) (*RedisQueue, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}
	return &RedisQueue{client: client}, nil
}

// Close releases the connection pool.
func (q *RedisQueue) Close() error { return q.client.Close() }

// PushJob adds a job to the queue.
func (q *RedisQueue) PushJob(ctx context.Context, job *Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	return q.client.LPush(ctx, JobQueueKey, data).Err()
}

// PopJob blocks up to timeout for the next job. It returns nil, nil on timeout.
func (q *RedisQueue) PopJob(ctx context.Context, timeout time.Duration) (*Job, error) {
	var job Job
	ok, err := q.pop(ctx, JobQueueKey, timeout, &job)
	if !ok || err != nil {
		return nil, err
	}
	return &job, nil
}

// PushResult adds a result to the result queue.
func (q *RedisQueue) PushResult(ctx context.Context, res *Result) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	return q.client.LPush(ctx, ResultQueueKey, data).Err()
}

// PopResult blocks up to timeout for the next result. It returns nil, nil on timeout.
func (q *RedisQueue) PopResult(ctx context.Context, timeout time.Duration) (*Result, error) {
	var res Result
	ok, err := q.pop(ctx, ResultQueueKey, timeout, &res)
	if !ok || err != nil {
		return nil, err
	}
	return &res, nil
}

// Pending returns the number of queued jobs.
func (q *RedisQueue) Pending(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, JobQueueKey).Result()
}

func (q *RedisQueue) pop(ctx context.Context, key string, timeout time.Duration, v any) (bool, error) {
	result, err := q.client.BRPop(ctx, timeout, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil // timeout
		}
		return false, fmt.Errorf("pop %s: %w", key, err)
	}
	if len(result) < 2 {
		return false, fmt.Errorf("pop %s: unexpected reply %v", key, result)
	}
	if err := json.Unmarshal([]byte(result[1]), v); err != nil {
		return false, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return true, nil
}
