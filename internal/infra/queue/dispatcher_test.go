package queue

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notify-dispatch/internal/domain/entity"
	"notify-dispatch/internal/resilience/retry"
	"notify-dispatch/internal/usecase/dispatch"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fastPolicy() retry.Policy {
	return retry.Policy{MaxRetries: 3, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Multiplier: 2}
}

// fakeAttempter returns outcome for every job and records what it saw.
type fakeAttempter struct {
	mu      sync.Mutex
	outcome dispatch.Outcome
	err     error
	jobs    []dispatch.Job
	ctxErrs []error
	hold    chan struct{}

	running int32
	peak    int32
}

func (f *fakeAttempter) Attempt(ctx context.Context, job dispatch.Job) (dispatch.Outcome, error) {
	n := atomic.AddInt32(&f.running, 1)
	defer atomic.AddInt32(&f.running, -1)
	for {
		p := atomic.LoadInt32(&f.peak)
		if n <= p || atomic.CompareAndSwapInt32(&f.peak, p, n) {
			break
		}
	}
	if f.hold != nil {
		<-f.hold
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs = append(f.jobs, job)
	f.ctxErrs = append(f.ctxErrs, ctx.Err())
	return f.outcome, f.err
}

func (f *fakeAttempter) Jobs() []dispatch.Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]dispatch.Job(nil), f.jobs...)
}

func TestDispatcher_Process_Outcomes(t *testing.T) {
	tests := []struct {
		name        string
		outcome     dispatch.Outcome
		err         error
		attempt     int
		wantPending bool
		wantAttempt int
	}{
		{name: "delivered", outcome: dispatch.OutcomeDelivered, attempt: 1},
		{name: "permanent failure", outcome: dispatch.OutcomePermanentFailure, attempt: 1},
		{name: "retry", outcome: dispatch.OutcomeRetryRequested, attempt: 1, wantPending: true, wantAttempt: 2},
		{name: "retry after error", outcome: dispatch.OutcomeRetryRequested, err: errors.New("db down"), attempt: 2, wantPending: true, wantAttempt: 3},
		{name: "exhausted", outcome: dispatch.OutcomeRetryRequested, attempt: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewMemoryQueue()
			a := &fakeAttempter{outcome: tt.outcome, err: tt.err}
			d := NewDispatcher(q, a, DispatcherConfig{Concurrency: 1, Policy: fastPolicy()}, discardLogger())

			d.Process(context.Background(), dispatch.Job{NotificationID: 1, Attempt: tt.attempt})

			queued, _ := q.Pending(context.Background(), 1)
			assert.Equal(t, tt.wantPending, queued)
			if tt.wantPending {
				job, err := q.Next(context.Background())
				require.NoError(t, err)
				assert.Equal(t, tt.wantAttempt, job.Attempt)
			}
		})
	}
}

func TestDispatcher_Process_RetryKeepsOverrides(t *testing.T) {
	q := NewMemoryQueue()
	a := &fakeAttempter{outcome: dispatch.OutcomeRetryRequested}
	d := NewDispatcher(q, a, DispatcherConfig{Concurrency: 1, Policy: fastPolicy()}, discardLogger())
	overrides := &entity.Credentials{SMTPUser: "once@example.com", SMTPPassword: "pw"}

	d.Process(context.Background(), dispatch.Job{NotificationID: 1, Attempt: 1, RequestID: "req-1", Overrides: overrides})

	next, err := q.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, next.Attempt)
	assert.Equal(t, "req-1", next.RequestID)
	require.NotNil(t, next.Overrides)
	assert.Equal(t, *overrides, *next.Overrides)
}

func TestDispatcher_Process_DetachedFromCancellation(t *testing.T) {
	q := NewMemoryQueue()
	a := &fakeAttempter{outcome: dispatch.OutcomeRetryRequested}
	d := NewDispatcher(q, a, DispatcherConfig{Policy: fastPolicy()}, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Process(ctx, dispatch.Job{NotificationID: 1, Attempt: 1})

	require.Len(t, a.ctxErrs, 1)
	assert.NoError(t, a.ctxErrs[0])
	queued, _ := q.Pending(context.Background(), 1)
	assert.True(t, queued, "retry scheduled despite cancelled parent")
}

func TestDispatcher_Run_RetriesUntilExhausted(t *testing.T) {
	q := NewMemoryQueue()
	a := &fakeAttempter{outcome: dispatch.OutcomeRetryRequested}
	d := NewDispatcher(q, a, DispatcherConfig{Concurrency: 2, Policy: fastPolicy()}, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	require.NoError(t, q.Submit(ctx, dispatch.Job{NotificationID: 3}))

	require.Eventually(t, func() bool { return len(a.Jobs()) == 4 }, 2*time.Second, 5*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	jobs := a.Jobs()
	require.Len(t, jobs, 4, "first attempt plus three retries")
	for i, j := range jobs {
		assert.Equal(t, i+1, j.Attempt)
	}
	n, _ := q.Len(context.Background())
	assert.Zero(t, n)
}

func TestDispatcher_Run_BoundsConcurrency(t *testing.T) {
	q := NewMemoryQueue()
	hold := make(chan struct{})
	a := &fakeAttempter{outcome: dispatch.OutcomeDelivered, hold: hold}
	d := NewDispatcher(q, a, DispatcherConfig{Concurrency: 3, Policy: fastPolicy()}, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	for i := int64(1); i <= 10; i++ {
		require.NoError(t, q.Submit(ctx, dispatch.Job{NotificationID: i}))
	}

	require.Eventually(t, func() bool { return atomic.LoadInt32(&a.running) == 3 }, time.Second, 5*time.Millisecond)
	assert.True(t, d.Active(1) || d.Active(2) || d.Active(3))

	close(hold)
	require.Eventually(t, func() bool { return len(a.Jobs()) == 10 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	assert.LessOrEqual(t, atomic.LoadInt32(&a.peak), int32(3))
	assert.False(t, d.Active(1))
}

func TestDispatcher_Run_StopsOnClose(t *testing.T) {
	q := NewMemoryQueue()
	d := NewDispatcher(q, &fakeAttempter{}, DispatcherConfig{Policy: fastPolicy()}, discardLogger())

	done := make(chan error, 1)
	go func() { done <- d.Run(context.Background()) }()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, q.Close())

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not stop")
	}
}

func TestDispatcher_Pacing(t *testing.T) {
	q := NewMemoryQueue()
	a := &fakeAttempter{outcome: dispatch.OutcomeDelivered}
	d := NewDispatcher(q, a, DispatcherConfig{Concurrency: 4, Rate: 50, Burst: 1, Policy: fastPolicy()}, discardLogger())

	for i := int64(1); i <= 5; i++ {
		require.NoError(t, q.Submit(context.Background(), dispatch.Job{NotificationID: i}))
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	start := time.Now()
	go func() { done <- d.Run(ctx) }()

	require.Eventually(t, func() bool { return len(a.Jobs()) == 5 }, 2*time.Second, 2*time.Millisecond)
	elapsed := time.Since(start)
	cancel()
	<-done

	// 50/s with burst 1: four waits of ~20ms after the first job.
	assert.GreaterOrEqual(t, elapsed, 60*time.Millisecond)
}

// flakyQueue fails the first len(errs) Next calls, then defers to Queue.
type flakyQueue struct {
	Queue
	mu    sync.Mutex
	errs  []error
	calls int
}

func (f *flakyQueue) Next(ctx context.Context) (dispatch.Job, error) {
	f.mu.Lock()
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		f.mu.Unlock()
		return dispatch.Job{}, err
	}
	f.mu.Unlock()
	return f.Queue.Next(ctx)
}

func TestDispatcher_Run_SurvivesQueueErrors(t *testing.T) {
	mem := NewMemoryQueue()
	q := &flakyQueue{Queue: mem, errs: []error{
		errors.New("queue/redis: claim: i/o timeout"),
		fmt.Errorf("%w: bad payload", ErrMalformedJob),
		errors.New("queue/redis: claim: circuit breaker is open"),
	}}
	a := &fakeAttempter{outcome: dispatch.OutcomeDelivered}
	cfg := DispatcherConfig{
		Concurrency:    1,
		Policy:         fastPolicy(),
		ReceiveBackoff: retry.Policy{InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Multiplier: 2},
	}
	d := NewDispatcher(q, a, cfg, discardLogger())
	require.NoError(t, mem.Submit(context.Background(), dispatch.Job{NotificationID: 1}))

	backendBefore := testutil.ToFloat64(receiveErrorsTotal.WithLabelValues("backend"))
	malformedBefore := testutil.ToFloat64(receiveErrorsTotal.WithLabelValues("malformed"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	require.Eventually(t, func() bool { return len(a.Jobs()) == 1 }, 2*time.Second, 5*time.Millisecond)
	select {
	case err := <-done:
		t.Fatalf("dispatcher stopped early: %v", err)
	default:
	}

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, int64(1), a.Jobs()[0].NotificationID)
	assert.Equal(t, backendBefore+2, testutil.ToFloat64(receiveErrorsTotal.WithLabelValues("backend")))
	assert.Equal(t, malformedBefore+1, testutil.ToFloat64(receiveErrorsTotal.WithLabelValues("malformed")))
}

func TestDispatcher_Run_BackoffHonorsCancellation(t *testing.T) {
	q := &flakyQueue{Queue: NewMemoryQueue(), errs: []error{errors.New("connection refused")}}
	cfg := DispatcherConfig{
		Policy:         fastPolicy(),
		ReceiveBackoff: retry.Policy{InitialDelay: time.Hour, Multiplier: 1},
	}
	d := NewDispatcher(q, &fakeAttempter{}, cfg, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	require.Eventually(t, func() bool {
		q.mu.Lock()
		defer q.mu.Unlock()
		return q.calls == 1
	}, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not stop while backing off")
	}
}
