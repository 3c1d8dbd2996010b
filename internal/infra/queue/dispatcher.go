package queue

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"notify-dispatch/internal/handler/http/requestid"
	"notify-dispatch/internal/resilience/retry"
	"notify-dispatch/internal/usecase/dispatch"
)

// Attempter runs one delivery attempt. *dispatch.Orchestrator implements it.
type Attempter interface {
	Attempt(ctx context.Context, job dispatch.Job) (dispatch.Outcome, error)
}

// DispatcherConfig tunes a Dispatcher.
type DispatcherConfig struct {
	// Concurrency bounds attempts running at once.
	Concurrency int
	// AttemptTimeout bounds one attempt, row lock included.
	AttemptTimeout time.Duration
	// Rate limits attempts started per second across the pool. Zero
	// disables pacing.
	Rate  float64
	Burst int
	// Policy decides whether and when an undelivered job runs again.
	Policy retry.Policy
	// ReceiveBackoff spaces out Next calls after consecutive queue errors.
	// Only its delays are used; the dispatcher never gives up.
	ReceiveBackoff retry.Policy
}

// DefaultReceiveBackoff waits 500ms after the first queue error, doubling up
// to 30s.
func DefaultReceiveBackoff() retry.Policy {
	return retry.Policy{
		InitialDelay:   500 * time.Millisecond,
		MaxDelay:       30 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

// DefaultDispatcherConfig returns 10 workers, a 2 minute attempt timeout,
// no pacing and the default retry policy.
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		Concurrency:    10,
		AttemptTimeout: 2 * time.Minute,
		Policy:         retry.DefaultPolicy(),
		ReceiveBackoff: DefaultReceiveBackoff(),
	}
}

// Dispatcher pulls due jobs from a Queue and runs them.
type Dispatcher struct {
	queue     Queue
	attempter Attempter
	cfg       DispatcherConfig
	sem       *semaphore.Weighted
	limiter   *rate.Limiter
	logger    *slog.Logger
	now       func() time.Time

	mu     sync.Mutex
	active map[int64]int
}

func NewDispatcher(q Queue, a Attempter, cfg DispatcherConfig, logger *slog.Logger) *Dispatcher {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = DefaultDispatcherConfig().AttemptTimeout
	}
	if cfg.ReceiveBackoff.InitialDelay <= 0 {
		cfg.ReceiveBackoff = DefaultReceiveBackoff()
	}
	if logger == nil {
		logger = slog.Default()
	}

	var limiter *rate.Limiter
	if cfg.Rate > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.Rate), burst)
	}

	return &Dispatcher{
		queue:     q,
		attempter: a,
		cfg:       cfg,
		sem:       semaphore.NewWeighted(int64(cfg.Concurrency)),
		limiter:   limiter,
		logger:    logger,
		now:       time.Now,
		active:    make(map[int64]int),
	}
}

// Active reports whether an attempt for the notification is running in
// this dispatcher.
func (d *Dispatcher) Active(notificationID int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active[notificationID] > 0
}

func (d *Dispatcher) track(id int64, delta int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.active[id] += delta
	if d.active[id] <= 0 {
		delete(d.active, id)
	}
}

// Run consumes jobs until ctx is cancelled or the queue is closed, then
// waits for running attempts to finish. Attempts already started are not
// cancelled with ctx; each is bounded by AttemptTimeout instead.
//
// Other queue errors do not stop Run: malformed entries are dropped and
// backend errors are retried with ReceiveBackoff.
func (d *Dispatcher) Run(ctx context.Context) error {
	var eg errgroup.Group
	defer func() { _ = eg.Wait() }()

	failures := 0

	d.logger.Info("dispatcher started",
		slog.Int("concurrency", d.cfg.Concurrency),
		slog.Int("max_attempts", d.cfg.Policy.MaxAttempts()))

	for {
		if err := d.sem.Acquire(ctx, 1); err != nil {
			return d.stopped(ctx, err)
		}
		if d.limiter != nil {
			if err := d.limiter.Wait(ctx); err != nil {
				d.sem.Release(1)
				return d.stopped(ctx, err)
			}
		}

		job, err := d.queue.Next(ctx)
		if err != nil {
			d.sem.Release(1)
			if ctx.Err() != nil || errors.Is(err, ErrClosed) {
				return d.stopped(ctx, err)
			}
			if errors.Is(err, ErrMalformedJob) {
				receiveErrorsTotal.WithLabelValues("malformed").Inc()
				d.logger.Warn("dropped malformed job", slog.Any("error", err))
				continue
			}

			failures++
			receiveErrorsTotal.WithLabelValues("backend").Inc()
			delay := d.cfg.ReceiveBackoff.Backoff(failures)
			d.logger.Error("failed to receive job, backing off",
				slog.Any("error", err),
				slog.Int("consecutive_failures", failures),
				slog.Duration("delay", delay))
			if !sleepCtx(ctx, delay) {
				return d.stopped(ctx, ctx.Err())
			}
			continue
		}
		failures = 0

		eg.Go(func() error {
			defer d.sem.Release(1)
			d.Process(ctx, job)
			return nil
		})
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (d *Dispatcher) stopped(ctx context.Context, err error) error {
	if ctx.Err() != nil || errors.Is(err, ErrClosed) {
		d.logger.Info("dispatcher stopping, waiting for running attempts")
		return nil
	}
	d.logger.Error("dispatcher stopped", slog.Any("error", err))
	return err
}

// Process runs one job and reschedules it if the outcome asks for a retry.
func (d *Dispatcher) Process(ctx context.Context, job dispatch.Job) {
	jobsInFlight.Inc()
	defer jobsInFlight.Dec()
	d.track(job.NotificationID, 1)
	defer d.track(job.NotificationID, -1)

	attemptCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.cfg.AttemptTimeout)
	defer cancel()
	attemptCtx = requestid.WithRequestID(attemptCtx, job.RequestID)

	logger := d.logger.With(
		slog.Int64("notification_id", job.NotificationID),
		slog.Int("attempt", job.Attempt))
	if job.RequestID != "" {
		logger = logger.With(slog.String("request_id", job.RequestID))
	}

	outcome, err := d.attempter.Attempt(attemptCtx, job)
	jobsProcessedTotal.WithLabelValues(outcome.String()).Inc()

	if !outcome.Retryable() {
		return
	}

	delay, ok := d.cfg.Policy.Next(job.Attempt)
	if !ok {
		retriesExhaustedTotal.Inc()
		logger.Warn("retries exhausted, notification left undelivered",
			slog.Int("max_attempts", d.cfg.Policy.MaxAttempts()),
			slog.Any("last_error", err))
		return
	}

	next := job
	next.Attempt++
	// Scheduling must survive shutdown of the consumer loop.
	if serr := d.queue.Schedule(context.WithoutCancel(ctx), next, d.now().Add(delay)); serr != nil {
		if errors.Is(serr, ErrClosed) {
			logger.Warn("queue closed, retry left to the recovery sweep")
			return
		}
		logger.Error("failed to schedule retry", slog.Any("error", serr))
		return
	}
	retriesScheduledTotal.Inc()
	logger.Info("retry scheduled",
		slog.Duration("delay", delay),
		slog.Int("next_attempt", next.Attempt))
}
