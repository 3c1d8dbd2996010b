// Package queue schedules delivery attempts.
//
// A Queue holds jobs until they are due. The Dispatcher pulls due jobs,
// runs them through the orchestrator with bounded concurrency and
// reschedules undelivered notifications according to a retry.Policy. The
// Sweeper periodically resubmits undelivered notifications that are not
// queued at all, for example after a restart of a process using the
// in-memory queue.
package queue

import (
	"context"
	"errors"
	"time"

	"notify-dispatch/internal/usecase/dispatch"
)

var (
	// ErrClosed is returned by a queue after Close.
	ErrClosed = errors.New("queue: closed")
	// ErrMalformedJob is returned by Next for an entry that could not be
	// decoded. The entry has already been removed from the queue.
	ErrMalformedJob = errors.New("queue: malformed job")
)

// Queue is a delay queue of delivery jobs. Implementations are safe for
// concurrent use.
type Queue interface {
	// Submit enqueues job to run as soon as possible.
	Submit(ctx context.Context, job dispatch.Job) error
	// Schedule enqueues job to run at or after at.
	Schedule(ctx context.Context, job dispatch.Job, at time.Time) error
	// Next blocks until a job is due or ctx is done.
	Next(ctx context.Context) (dispatch.Job, error)
	// Pending reports whether a job for the notification is waiting.
	Pending(ctx context.Context, notificationID int64) (bool, error)
	// Len returns the number of waiting jobs.
	Len(ctx context.Context) (int, error)
	Close() error
}

// normalize fills defaults shared by every implementation.
func normalize(job dispatch.Job) dispatch.Job {
	if job.Attempt < 1 {
		job.Attempt = 1
	}
	return job
}
