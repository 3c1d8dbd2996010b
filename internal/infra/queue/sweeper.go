package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"notify-dispatch/internal/domain/entity"
	"notify-dispatch/internal/handler/http/requestid"
	"notify-dispatch/internal/resilience/retry"
	"notify-dispatch/internal/usecase/dispatch"
)

// PendingLister lists undelivered notifications with attempts left.
type PendingLister interface {
	ListPendingRetry(ctx context.Context, maxAttempts int, afterID int64, limit int) ([]*entity.Notification, error)
}

// SweeperConfig tunes a Sweeper.
type SweeperConfig struct {
	// Schedule is a cron expression or descriptor such as "@every 1m".
	Schedule string
	Location *time.Location
	// Policy supplies the attempt cap.
	Policy retry.Policy
	// Batch caps notifications resubmitted per sweep.
	Batch int
	// Grace skips notifications younger than this; the API submits those.
	Grace time.Duration
	// Timeout bounds one sweep.
	Timeout time.Duration
}

// Sweeper resubmits undelivered notifications that have attempts left but
// no job waiting in the queue.
type Sweeper struct {
	lister PendingLister
	queue  Queue
	cfg    SweeperConfig
	busy   func(notificationID int64) bool
	logger *slog.Logger
	cron   *cron.Cron
	now    func() time.Time
}

// NewSweeper builds a sweeper. busy, when not nil, reports notifications
// with an attempt running right now; they are skipped.
func NewSweeper(lister PendingLister, q Queue, cfg SweeperConfig, busy func(int64) bool, logger *slog.Logger) *Sweeper {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Batch <= 0 {
		cfg.Batch = 100
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		lister: lister,
		queue:  q,
		cfg:    cfg,
		busy:   busy,
		logger: logger,
		cron:   cron.New(cron.WithLocation(cfg.Location)),
		now:    time.Now,
	}
}

// Start registers the sweep on its schedule and starts the scheduler.
func (s *Sweeper) Start() error {
	_, err := s.cron.AddFunc(s.cfg.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
		defer cancel()
		if _, err := s.SweepOnce(ctx); err != nil {
			s.logger.Error("recovery sweep failed", slog.Any("error", err))
		}
	})
	if err != nil {
		return fmt.Errorf("add sweep schedule %q: %w", s.cfg.Schedule, err)
	}
	s.cron.Start()
	s.logger.Info("recovery sweeper started",
		slog.String("schedule", s.cfg.Schedule),
		slog.String("timezone", s.cfg.Location.String()))
	return nil
}

// Stop stops scheduling and returns a context done when a running sweep
// has finished.
func (s *Sweeper) Stop() context.Context {
	return s.cron.Stop()
}

// SweepOnce runs one sweep and returns how many notifications it resubmitted.
// It pages through pending notifications until Batch of them have been
// resubmitted or none are left, so queued and running rows never use up
// the batch.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.cfg.Grace)
	submitted := 0
	var afterID int64

	for submitted < s.cfg.Batch {
		page, err := s.lister.ListPendingRetry(ctx, s.cfg.Policy.MaxAttempts(), afterID, s.cfg.Batch)
		if err != nil {
			sweepRunsTotal.WithLabelValues("failure").Inc()
			return submitted, fmt.Errorf("list pending notifications: %w", err)
		}

		n, err := s.resubmit(ctx, page, cutoff, s.cfg.Batch-submitted)
		submitted += n
		if err != nil {
			sweepRunsTotal.WithLabelValues("failure").Inc()
			return submitted, err
		}
		if len(page) < s.cfg.Batch {
			break
		}
		afterID = page[len(page)-1].ID
	}

	sweepRunsTotal.WithLabelValues("success").Inc()
	sweepResubmittedTotal.Add(float64(submitted))
	return submitted, nil
}

// resubmit queues up to budget notifications from page.
func (s *Sweeper) resubmit(ctx context.Context, page []*entity.Notification, cutoff time.Time, budget int) (int, error) {
	submitted := 0
	for _, n := range page {
		if submitted == budget {
			break
		}
		if n.CreatedAt.After(cutoff) {
			continue
		}
		if s.busy != nil && s.busy(n.ID) {
			continue
		}
		queued, err := s.queue.Pending(ctx, n.ID)
		if err != nil {
			return submitted, fmt.Errorf("check queued notification %d: %w", n.ID, err)
		}
		if queued {
			continue
		}

		job := dispatch.Job{
			NotificationID: n.ID,
			RequestID:      requestid.New(),
			Attempt:        n.Attempts + 1,
		}
		if err := s.queue.Submit(ctx, job); err != nil {
			return submitted, fmt.Errorf("resubmit notification %d: %w", n.ID, err)
		}
		submitted++
		s.logger.Info("notification resubmitted by recovery sweep",
			slog.Int64("notification_id", n.ID),
			slog.Int("attempts", n.Attempts),
			slog.String("request_id", job.RequestID))
	}
	return submitted, nil
}
