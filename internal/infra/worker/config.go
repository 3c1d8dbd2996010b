package worker

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hashicorp/go-multierror"

	"notify-dispatch/internal/infra/queue"
	"notify-dispatch/internal/pkg/config"
	"notify-dispatch/internal/resilience/retry"
)

// Queue backends.
const (
	QueueMemory = "memory"
	QueueRedis  = "redis"
)

// WorkerConfig controls the dispatcher, the recovery sweeper and the worker's
// health server. LoadConfigFromEnv never fails: invalid values fall back to
// DefaultConfig and are reported through WorkerMetrics.
type WorkerConfig struct {
	// SweepSchedule is a cron expression or descriptor for the recovery sweep.
	SweepSchedule string
	// Timezone is the IANA zone SweepSchedule is evaluated in.
	Timezone string
	// SweepBatch caps notifications resubmitted per sweep.
	SweepBatch int
	// SweepGrace skips notifications younger than this.
	SweepGrace time.Duration

	// Concurrency bounds delivery attempts running at once (1-100).
	Concurrency int
	// AttemptTimeout bounds one delivery attempt (1s-30m).
	AttemptTimeout time.Duration
	// DispatchRate limits attempts started per second. 0 disables pacing.
	DispatchRate  float64
	DispatchBurst int

	// QueueBackend is "memory" or "redis".
	QueueBackend string
	RedisAddr    string
	RedisKey     string

	// MaxRetries counts retries after the first attempt (0-10).
	MaxRetries        int
	RetryInitialDelay time.Duration
	RetryMaxDelay     time.Duration

	// HealthPort serves /health, /health/ready and /metrics (1024-65535).
	HealthPort int
}

// DefaultConfig sweeps every minute in UTC, runs 10 attempts at once and
// retries 3 times starting at 1s.
func DefaultConfig() WorkerConfig {
	p := retry.DefaultPolicy()
	return WorkerConfig{
		SweepSchedule:     "@every 1m",
		Timezone:          "UTC",
		SweepBatch:        100,
		SweepGrace:        time.Minute,
		Concurrency:       10,
		AttemptTimeout:    2 * time.Minute,
		DispatchRate:      0,
		DispatchBurst:     5,
		QueueBackend:      QueueMemory,
		RedisAddr:         "localhost:6379",
		RedisKey:          "notify:jobs",
		MaxRetries:        p.MaxRetries,
		RetryInitialDelay: p.InitialDelay,
		RetryMaxDelay:     p.MaxDelay,
		HealthPort:        9091,
	}
}

// RetryPolicy builds the redelivery policy from the configuration.
func (c *WorkerConfig) RetryPolicy() retry.Policy {
	p := retry.DefaultPolicy()
	p.MaxRetries = c.MaxRetries
	p.InitialDelay = c.RetryInitialDelay
	p.MaxDelay = c.RetryMaxDelay
	return p
}

// DispatcherConfig maps the worker settings onto the dispatcher.
func (c *WorkerConfig) DispatcherConfig() queue.DispatcherConfig {
	return queue.DispatcherConfig{
		Concurrency:    c.Concurrency,
		AttemptTimeout: c.AttemptTimeout,
		Rate:           c.DispatchRate,
		Burst:          c.DispatchBurst,
		Policy:         c.RetryPolicy(),
		ReceiveBackoff: queue.DefaultReceiveBackoff(),
	}
}

func (c *WorkerConfig) SweeperConfig() queue.SweeperConfig {
	return queue.SweeperConfig{
		Schedule: c.SweepSchedule,
		Location: c.Location(),
		Policy:   c.RetryPolicy(),
		Batch:    c.SweepBatch,
		Grace:    c.SweepGrace,
		Timeout:  time.Minute,
	}
}

// Location resolves Timezone, falling back to UTC.
func (c *WorkerConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func validateQueueBackend(v string) error {
	return config.ValidateOneOf(QueueMemory, QueueRedis)(v)
}

func validateRetryDelay(d time.Duration) error {
	return config.ValidateDuration(d, time.Millisecond, time.Hour)
}

// Validate reports every invalid field.
func (c *WorkerConfig) Validate() error {
	var result *multierror.Error
	check := func(field string, err error) {
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", field, err))
		}
	}

	check("sweep schedule", config.ValidateCronSchedule(c.SweepSchedule))
	check("timezone", config.ValidateTimezone(c.Timezone))
	check("sweep batch", config.ValidateIntRange(c.SweepBatch, 1, 10000))
	check("concurrency", config.ValidateIntRange(c.Concurrency, 1, 100))
	check("attempt timeout", config.ValidateDuration(c.AttemptTimeout, time.Second, 30*time.Minute))
	check("dispatch rate", config.ValidateFloatRange(c.DispatchRate, 0, 10000))
	check("dispatch burst", config.ValidateIntRange(c.DispatchBurst, 1, 1000))
	check("queue backend", validateQueueBackend(c.QueueBackend))
	if c.QueueBackend == QueueRedis && c.RedisAddr == "" {
		check("redis addr", errors.New("required for the redis backend"))
	}
	check("max retries", config.ValidateIntRange(c.MaxRetries, 0, 10))
	check("retry initial delay", validateRetryDelay(c.RetryInitialDelay))
	check("retry max delay", validateRetryDelay(c.RetryMaxDelay))
	if c.RetryMaxDelay < c.RetryInitialDelay {
		check("retry max delay", errors.New("must not be below the initial delay"))
	}
	check("health port", config.ValidateIntRange(c.HealthPort, 1024, 65535))

	return result.ErrorOrNil()
}

// LoadConfigFromEnv reads:
//
//	SWEEP_SCHEDULE, WORKER_TIMEZONE, SWEEP_BATCH, SWEEP_GRACE,
//	DISPATCH_CONCURRENCY, ATTEMPT_TIMEOUT, DISPATCH_RATE, DISPATCH_BURST,
//	QUEUE_BACKEND, REDIS_ADDR, REDIS_QUEUE_KEY,
//	RETRY_MAX, RETRY_INITIAL_DELAY, RETRY_MAX_DELAY, WORKER_HEALTH_PORT
//
// The error is always nil.
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) (*WorkerConfig, error) {
	cfg := DefaultConfig()
	var cm *config.ConfigMetrics
	if metrics != nil {
		cm = metrics.ConfigMetrics
	}
	fallback := false
	apply := func(fb bool) { fallback = fallback || fb }

	r1 := config.LoadEnvWithFallback("SWEEP_SCHEDULE", cfg.SweepSchedule, config.ValidateCronSchedule)
	cfg.SweepSchedule = r1.Apply(logger, cm, "sweep_schedule")
	apply(r1.FallbackApplied)

	r2 := config.LoadEnvWithFallback("WORKER_TIMEZONE", cfg.Timezone, config.ValidateTimezone)
	cfg.Timezone = r2.Apply(logger, cm, "timezone")
	apply(r2.FallbackApplied)

	r3 := config.LoadEnvInt("SWEEP_BATCH", cfg.SweepBatch, func(v int) error {
		return config.ValidateIntRange(v, 1, 10000)
	})
	cfg.SweepBatch = r3.Apply(logger, cm, "sweep_batch")
	apply(r3.FallbackApplied)

	r4 := config.LoadEnvDuration("SWEEP_GRACE", cfg.SweepGrace, func(d time.Duration) error {
		return config.ValidateDuration(d, 0, 24*time.Hour)
	})
	cfg.SweepGrace = r4.Apply(logger, cm, "sweep_grace")
	apply(r4.FallbackApplied)

	r5 := config.LoadEnvInt("DISPATCH_CONCURRENCY", cfg.Concurrency, func(v int) error {
		return config.ValidateIntRange(v, 1, 100)
	})
	cfg.Concurrency = r5.Apply(logger, cm, "concurrency")
	apply(r5.FallbackApplied)

	r6 := config.LoadEnvDuration("ATTEMPT_TIMEOUT", cfg.AttemptTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, time.Second, 30*time.Minute)
	})
	cfg.AttemptTimeout = r6.Apply(logger, cm, "attempt_timeout")
	apply(r6.FallbackApplied)

	r7 := config.LoadEnvFloat("DISPATCH_RATE", cfg.DispatchRate, func(v float64) error {
		return config.ValidateFloatRange(v, 0, 10000)
	})
	cfg.DispatchRate = r7.Apply(logger, cm, "dispatch_rate")
	apply(r7.FallbackApplied)

	r8 := config.LoadEnvInt("DISPATCH_BURST", cfg.DispatchBurst, func(v int) error {
		return config.ValidateIntRange(v, 1, 1000)
	})
	cfg.DispatchBurst = r8.Apply(logger, cm, "dispatch_burst")
	apply(r8.FallbackApplied)

	r9 := config.LoadEnvWithFallback("QUEUE_BACKEND", cfg.QueueBackend, validateQueueBackend)
	cfg.QueueBackend = r9.Apply(logger, cm, "queue_backend")
	apply(r9.FallbackApplied)

	cfg.RedisAddr = config.LoadEnvString("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisKey = config.LoadEnvString("REDIS_QUEUE_KEY", cfg.RedisKey)

	r10 := config.LoadEnvInt("RETRY_MAX", cfg.MaxRetries, func(v int) error {
		return config.ValidateIntRange(v, 0, 10)
	})
	cfg.MaxRetries = r10.Apply(logger, cm, "max_retries")
	apply(r10.FallbackApplied)

	r11 := config.LoadEnvDuration("RETRY_INITIAL_DELAY", cfg.RetryInitialDelay, validateRetryDelay)
	cfg.RetryInitialDelay = r11.Apply(logger, cm, "retry_initial_delay")
	apply(r11.FallbackApplied)

	r12 := config.LoadEnvDuration("RETRY_MAX_DELAY", cfg.RetryMaxDelay, validateRetryDelay)
	cfg.RetryMaxDelay = r12.Apply(logger, cm, "retry_max_delay")
	apply(r12.FallbackApplied)

	if cfg.RetryMaxDelay < cfg.RetryInitialDelay {
		def := DefaultConfig()
		res := config.LoadResult[time.Duration]{
			Value:           def.RetryMaxDelay,
			Warning:         fmt.Sprintf("RETRY_MAX_DELAY %v is below RETRY_INITIAL_DELAY %v, using defaults", cfg.RetryMaxDelay, cfg.RetryInitialDelay),
			FallbackApplied: true,
		}
		cfg.RetryMaxDelay = res.Apply(logger, cm, "retry_max_delay")
		cfg.RetryInitialDelay = def.RetryInitialDelay
		apply(true)
	}

	r13 := config.LoadEnvInt("WORKER_HEALTH_PORT", cfg.HealthPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	cfg.HealthPort = r13.Apply(logger, cm, "health_port")
	apply(r13.FallbackApplied)

	if cm != nil {
		cm.SetFallbackActive(fallback)
		cm.RecordLoadTimestamp()
	}
	return &cfg, nil
}
