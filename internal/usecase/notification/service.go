// Package notification implements the recipient and notification use cases:
// registering recipients, accepting notifications for asynchronous delivery,
// manual retries and one-shot sends that bypass persistence.
package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"notify-dispatch/internal/domain/entity"
	"notify-dispatch/internal/handler/http/requestid"
	"notify-dispatch/internal/observability/logging"
	"notify-dispatch/internal/observability/metrics"
	"notify-dispatch/internal/repository"
	"notify-dispatch/internal/usecase/delivery"
	"notify-dispatch/internal/usecase/dispatch"
)

// Submitter accepts delivery jobs. Submit must not block on delivery.
type Submitter interface {
	Submit(ctx context.Context, job dispatch.Job) error
}

type CreateRecipientInput struct {
	Email       string
	Phone       string
	TelegramID  string
	Credentials entity.Credentials
}

type CreateNotificationInput struct {
	RecipientID int64
	Message     string
	// Overrides apply to the first attempt and to the retries the dispatcher
	// schedules for it. They are never stored, so a notification recovered
	// by the sweeper uses the recipient's stored credentials.
	Overrides *entity.Credentials
}

// Service coordinates the repositories, the job queue and the senders.
type Service struct {
	Recipients    repository.RecipientRepository
	Notifications repository.NotificationRepository
	Queue         Submitter
	Chain         *delivery.Chain
}

func (s *Service) CreateRecipient(ctx context.Context, in CreateRecipientInput) (*entity.Recipient, error) {
	r := &entity.Recipient{
		Email:       in.Email,
		Phone:       in.Phone,
		TelegramID:  in.TelegramID,
		Credentials: in.Credentials,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if err := s.Recipients.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("create recipient: %w", err)
	}
	metrics.RecordRecipientCreated()
	return r, nil
}

func (s *Service) GetRecipient(ctx context.Context, id int64) (*entity.Recipient, error) {
	r, err := s.Recipients.Get(ctx, id)
	if errors.Is(err, entity.ErrNotFound) {
		return nil, ErrRecipientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get recipient: %w", err)
	}
	return r, nil
}

func (s *Service) ListRecipients(ctx context.Context) ([]*entity.Recipient, error) {
	rs, err := s.Recipients.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list recipients: %w", err)
	}
	return rs, nil
}

// CreateNotification stores the notification and queues its first attempt.
// A queue failure is logged, not returned: the notification is already
// persisted and the sweeper submits it later.
func (s *Service) CreateNotification(ctx context.Context, in CreateNotificationInput) (*entity.Notification, error) {
	n := &entity.Notification{RecipientID: in.RecipientID, Message: in.Message}
	if err := n.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.GetRecipient(ctx, in.RecipientID); err != nil {
		return nil, err
	}
	if err := s.Notifications.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}

	queued := s.submit(ctx, dispatch.Job{
		NotificationID: n.ID,
		Overrides:      in.Overrides,
		Attempt:        1,
	})
	metrics.RecordNotificationCreated(queued)
	return n, nil
}

func (s *Service) GetNotification(ctx context.Context, id int64) (*entity.Notification, error) {
	n, err := s.Notifications.Get(ctx, id)
	if errors.Is(err, entity.ErrNotFound) {
		return nil, ErrNotificationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get notification: %w", err)
	}
	return n, nil
}

// ListNotifications returns every notification, newest first.
func (s *Service) ListNotifications(ctx context.Context) ([]*entity.Notification, error) {
	ns, err := s.Notifications.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return ns, nil
}

// Retry queues another attempt for an undelivered notification. Unlike the
// sweeper it ignores the retry cap.
func (s *Service) Retry(ctx context.Context, id int64) error {
	n, err := s.GetNotification(ctx, id)
	if err != nil {
		return err
	}
	if n.Delivered {
		return ErrAlreadyDelivered
	}
	ctx, _ = requestid.Ensure(ctx)
	if err := s.Queue.Submit(ctx, dispatch.Job{
		NotificationID: n.ID,
		RequestID:      requestid.FromContext(ctx),
		Attempt:        n.Attempts + 1,
	}); err != nil {
		return fmt.Errorf("submit retry: %w", err)
	}
	metrics.RecordNotificationRetried()
	return nil
}

func (s *Service) submit(ctx context.Context, job dispatch.Job) bool {
	ctx, id := requestid.Ensure(ctx)
	job.RequestID = id
	if err := s.Queue.Submit(ctx, job); err != nil {
		logging.FromContext(ctx).Warn("notification stored but not queued",
			slog.Int64("notification_id", job.NotificationID),
			slog.Any("error", err))
		return false
	}
	return true
}
