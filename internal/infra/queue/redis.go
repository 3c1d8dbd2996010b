package queue

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"notify-dispatch/internal/resilience/circuitbreaker"
	"notify-dispatch/internal/usecase/dispatch"
)

var (
	//go:embed lua/claim.lua
	claimScript string

	claim = redis.NewScript(claimScript)

	_ Queue = (*RedisQueue)(nil)
	_ Queue = (*MemoryQueue)(nil)
)

const (
	DefaultRedisKey     = "notify:jobs"
	defaultPollInterval = 250 * time.Millisecond
)

// RedisQueue stores jobs in a sorted set scored by due time, so several
// worker processes can share one queue. A Lua script claims a due job and
// updates the pending counts atomically.
type RedisQueue struct {
	cmd          redis.Cmdable
	jobsKey      string
	pendingKey   string
	pollInterval time.Duration
	breaker      *circuitbreaker.CircuitBreaker
	now          func() time.Time
}

// RedisOption configures a RedisQueue.
type RedisOption func(*RedisQueue)

// WithPollInterval sets how often Next checks for due jobs.
func WithPollInterval(d time.Duration) RedisOption {
	return func(q *RedisQueue) {
		if d > 0 {
			q.pollInterval = d
		}
	}
}

// NewRedisQueue stores jobs under key and key+":pending".
func NewRedisQueue(cmd redis.Cmdable, key string, opts ...RedisOption) *RedisQueue {
	if key == "" {
		key = DefaultRedisKey
	}
	q := &RedisQueue{
		cmd:          cmd,
		jobsKey:      key,
		pendingKey:   key + ":pending",
		pollInterval: defaultPollInterval,
		breaker:      circuitbreaker.New(circuitbreaker.RedisQueueConfig()),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// redisEntry is the sorted-set member. ID keeps identical jobs distinct.
type redisEntry struct {
	ID  string       `json:"id"`
	Job dispatch.Job `json:"job"`
}

func encodeEntry(job dispatch.Job) (string, error) {
	b, err := json.Marshal(redisEntry{ID: uuid.NewString(), Job: normalize(job)})
	if err != nil {
		return "", fmt.Errorf("encode job: %w", err)
	}
	return string(b), nil
}

func decodeEntry(s string) (dispatch.Job, error) {
	var e redisEntry
	if err := json.Unmarshal([]byte(s), &e); err != nil {
		return dispatch.Job{}, fmt.Errorf("%w: %v", ErrMalformedJob, err)
	}
	if e.Job.NotificationID <= 0 {
		return dispatch.Job{}, fmt.Errorf("%w: missing notification id", ErrMalformedJob)
	}
	return e.Job, nil
}

func (q *RedisQueue) Submit(ctx context.Context, job dispatch.Job) error {
	return q.Schedule(ctx, job, q.now())
}

func (q *RedisQueue) Schedule(ctx context.Context, job dispatch.Job, at time.Time) error {
	member, err := encodeEntry(job)
	if err != nil {
		return err
	}

	err = q.breaker.Run(func() error {
		pipe := q.cmd.TxPipeline()
		pipe.ZAdd(ctx, q.jobsKey, redis.Z{Score: float64(at.UnixMilli()), Member: member})
		pipe.HIncrBy(ctx, q.pendingKey, strconv.FormatInt(job.NotificationID, 10), 1)
		_, err := pipe.Exec(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("queue/redis: schedule %s: %w", job, err)
	}
	return nil
}

// Next polls for a due job every poll interval. A claimed entry that cannot
// be decoded is returned as ErrMalformedJob.
func (q *RedisQueue) Next(ctx context.Context) (dispatch.Job, error) {
	ticker := time.NewTicker(q.pollInterval)
	defer ticker.Stop()

	for {
		job, ok, err := q.claim(ctx)
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			return dispatch.Job{}, err
		}
		if ok {
			return job, nil
		}

		select {
		case <-ctx.Done():
			return dispatch.Job{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (q *RedisQueue) claim(ctx context.Context) (dispatch.Job, bool, error) {
	var raw string
	err := q.breaker.Run(func() error {
		res, err := claim.Run(ctx, q.cmd,
			[]string{q.jobsKey, q.pendingKey},
			q.now().UnixMilli(),
		).Text()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		raw = res
		return err
	})
	if err != nil {
		return dispatch.Job{}, false, fmt.Errorf("queue/redis: claim: %w", err)
	}
	if raw == "" {
		return dispatch.Job{}, false, nil
	}

	job, err := decodeEntry(raw)
	if err != nil {
		return dispatch.Job{}, false, fmt.Errorf("queue/redis: %w", err)
	}
	return job, true, nil
}

func (q *RedisQueue) Pending(ctx context.Context, notificationID int64) (bool, error) {
	n, err := q.cmd.HGet(ctx, q.pendingKey, strconv.FormatInt(notificationID, 10)).Int()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("queue/redis: pending: %w", err)
	}
	return n > 0, nil
}

func (q *RedisQueue) Len(ctx context.Context) (int, error) {
	n, err := q.cmd.ZCard(ctx, q.jobsKey).Result()
	if err != nil {
		return 0, fmt.Errorf("queue/redis: len: %w", err)
	}
	return int(n), nil
}

// Close is a no-op; the caller owns the Redis client.
func (q *RedisQueue) Close() error { return nil }
