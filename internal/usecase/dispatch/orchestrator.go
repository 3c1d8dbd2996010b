// Package dispatch runs delivery attempts against persisted notifications.
//
// One call to Orchestrator.Attempt locks the notification row, runs the
// delivery chain once, records the attempt and reports an Outcome. Retrying
// is left to the queue that called it.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"notify-dispatch/internal/domain/entity"
	"notify-dispatch/internal/handler/http/requestid"
	"notify-dispatch/internal/observability/logging"
	"notify-dispatch/internal/observability/tracing"
	"notify-dispatch/internal/repository"
)

// Deliverer is the part of delivery.Chain the orchestrator needs.
type Deliverer interface {
	TryDeliver(ctx context.Context, r *entity.Recipient, message string) (entity.Channel, bool)
}

// Orchestrator performs delivery attempts. It holds no per-attempt state and
// is safe for concurrent use.
type Orchestrator struct {
	notifications repository.NotificationRepository
	chain         Deliverer
	tracer        trace.Tracer
	now           func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithTracer replaces the global tracer.
func WithTracer(t trace.Tracer) Option {
	return func(o *Orchestrator) { o.tracer = t }
}

func NewOrchestrator(notifications repository.NotificationRepository, chain Deliverer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		notifications: notifications,
		chain:         chain,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.tracer == nil {
		o.tracer = tracing.Tracer()
	}
	return o
}

// Attempt makes exactly one delivery attempt for job.NotificationID.
//
// The row stays locked while the chain runs. attempts grows by one whatever
// the result. A delivered notification stays delivered even if this attempt
// fails. Errors from the repository come back with OutcomeRetryRequested,
// except a missing notification or recipient, which is
// OutcomePermanentFailure wrapping entity.ErrNotFound.
func (o *Orchestrator) Attempt(ctx context.Context, job Job) (Outcome, error) {
	ctx = requestid.WithRequestID(ctx, job.RequestID)
	ctx, span := o.tracer.Start(ctx, "dispatch.attempt",
		trace.WithAttributes(
			attribute.Int64("notification.id", job.NotificationID),
			attribute.Int("job.attempt", job.Attempt),
			attribute.Bool("job.overrides", job.Overrides != nil && !job.Overrides.IsZero()),
		))
	defer span.End()

	logger := logging.WithRequestID(ctx, logging.FromContext(ctx)).
		With(slog.Int64("notification_id", job.NotificationID))
	start := o.now()

	var (
		channel  entity.Channel
		attempts int
	)
	err := o.notifications.UpdateLocked(ctx, job.NotificationID,
		func(ctx context.Context, n *entity.Notification, r *entity.Recipient) (bool, error) {
			target := *r
			if job.Overrides != nil {
				target = r.WithOverrides(*job.Overrides)
			}

			ch, ok := o.chain.TryDeliver(ctx, &target, n.Message)
			if !ok {
				ch = ""
			}
			n.RecordAttempt(ch)

			channel, attempts = ch, n.Attempts
			return true, nil
		})

	outcome := o.classify(channel, err)
	recordAttempt(outcome, o.now().Sub(start))
	span.SetAttributes(attribute.String("dispatch.outcome", outcome.String()))

	switch {
	case errors.Is(err, entity.ErrNotFound):
		span.SetStatus(codes.Error, "not found")
		logger.Warn("notification cannot be delivered", slog.Any("error", err))
		return outcome, fmt.Errorf("attempt notification %d: %w", job.NotificationID, err)
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist attempt")
		logger.Error("delivery attempt failed", slog.Any("error", err))
		return outcome, fmt.Errorf("attempt notification %d: %w", job.NotificationID, err)
	}

	span.SetAttributes(attribute.Int("notification.attempts", attempts))
	if outcome == OutcomeDelivered {
		recordDelivered(channel.String())
		span.SetAttributes(attribute.String("delivery.channel", channel.String()))
		logger.Info("notification delivered",
			slog.String("channel", channel.String()),
			slog.Int("attempts", attempts))
		return outcome, nil
	}

	logger.Info("no channel delivered, retry requested", slog.Int("attempts", attempts))
	return outcome, nil
}

func (o *Orchestrator) classify(channel entity.Channel, err error) Outcome {
	switch {
	case errors.Is(err, entity.ErrNotFound):
		return OutcomePermanentFailure
	case err != nil:
		return OutcomeRetryRequested
	case channel != "":
		return OutcomeDelivered
	default:
		return OutcomeRetryRequested
	}
}
