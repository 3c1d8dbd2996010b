package dispatch

import (
	"fmt"

	"notify-dispatch/internal/domain/entity"
)

// Job asks for one delivery attempt on a notification.
type Job struct {
	NotificationID int64 `json:"notification_id"`
	// Overrides are merged over the stored credentials for this job and the
	// retries scheduled from it. They are never persisted.
	Overrides *entity.Credentials `json:"overrides,omitempty"`
	RequestID string              `json:"request_id,omitempty"`
	// Attempt counts submissions of this job, starting at 1. The queue uses
	// it to decide whether another retry is allowed.
	Attempt int `json:"attempt,omitempty"`
}

func (j Job) String() string {
	return fmt.Sprintf("notification#%d attempt=%d", j.NotificationID, j.Attempt)
}

// Outcome is the result of one attempt as seen by the queue.
type Outcome int

const (
	// OutcomeDelivered means a channel accepted the message.
	OutcomeDelivered Outcome = iota + 1
	// OutcomeRetryRequested means no channel succeeded, or the attempt
	// could not be recorded. The queue should try again later.
	OutcomeRetryRequested
	// OutcomePermanentFailure means retrying cannot help, for example the
	// notification or its recipient no longer exists.
	OutcomePermanentFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDelivered:
		return "delivered"
	case OutcomeRetryRequested:
		return "retry_requested"
	case OutcomePermanentFailure:
		return "permanent_failure"
	default:
		return "unknown"
	}
}

// Retryable reports whether the queue should schedule another attempt.
func (o Outcome) Retryable() bool {
	return o == OutcomeRetryRequested
}
