package repository

import (
	"context"

	"notify-dispatch/internal/domain/entity"
)

// LockedUpdateFunc runs while the notification row is exclusively locked.
// The recipient is loaded in the same transaction. Returning true persists
// the delivery fields of n (delivered, delivery_method, attempts).
type LockedUpdateFunc func(ctx context.Context, n *entity.Notification, r *entity.Recipient) (persist bool, err error)

type NotificationRepository interface {
	Get(ctx context.Context, id int64) (*entity.Notification, error)
	// List returns notifications newest first.
	List(ctx context.Context) ([]*entity.Notification, error)
	// ListPendingRetry returns up to limit undelivered notifications with
	// fewer than maxAttempts attempts and an id above afterID, in id order.
	ListPendingRetry(ctx context.Context, maxAttempts int, afterID int64, limit int) ([]*entity.Notification, error)
	Create(ctx context.Context, n *entity.Notification) error
	// UpdateLocked loads notification id under an exclusive lock and calls fn.
	// Concurrent calls for the same id are serialized. It returns
	// entity.ErrNotFound when the notification or its recipient is missing.
	UpdateLocked(ctx context.Context, id int64, fn LockedUpdateFunc) error
}
