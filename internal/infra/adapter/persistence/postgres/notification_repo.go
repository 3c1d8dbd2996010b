package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"notify-dispatch/internal/domain/entity"
	"notify-dispatch/internal/repository"
)

type NotificationRepo struct{ db DB }

func NewNotificationRepo(db DB) repository.NotificationRepository {
	return &NotificationRepo{db: db}
}

const notificationColumns = `id, recipient_id, message, delivered, delivery_method, attempts, created_at`

func scanNotification(row rowScanner) (*entity.Notification, error) {
	var n entity.Notification
	var method sql.NullString
	if err := row.Scan(
		&n.ID, &n.RecipientID, &n.Message, &n.Delivered, &method, &n.Attempts, &n.CreatedAt,
	); err != nil {
		return nil, err
	}
	if method.Valid {
		ch := entity.Channel(method.String)
		n.DeliveryMethod = &ch
	}
	return &n, nil
}

func (repo *NotificationRepo) Get(ctx context.Context, id int64) (*entity.Notification, error) {
	query := `
SELECT ` + notificationColumns + `
FROM notifications
WHERE id = $1
LIMIT 1`
	n, err := scanNotification(repo.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return n, nil
}

func (repo *NotificationRepo) List(ctx context.Context) ([]*entity.Notification, error) {
	query := `
SELECT ` + notificationColumns + `
FROM notifications
ORDER BY created_at DESC, id DESC`
	return repo.query(ctx, "List", query)
}

func (repo *NotificationRepo) ListPendingRetry(ctx context.Context, maxAttempts int, afterID int64, limit int) ([]*entity.Notification, error) {
	query := `
SELECT ` + notificationColumns + `
FROM notifications
WHERE delivered = FALSE
AND attempts < $1
AND id > $2
ORDER BY id ASC
LIMIT $3`
	return repo.query(ctx, "ListPendingRetry", query, maxAttempts, afterID, limit)
}

func (repo *NotificationRepo) query(ctx context.Context, op, query string, args ...interface{}) ([]*entity.Notification, error) {
	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	notifications := make([]*entity.Notification, 0, 50)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (repo *NotificationRepo) Create(ctx context.Context, n *entity.Notification) error {
	const query = `
INSERT INTO notifications (recipient_id, message)
VALUES ($1, $2)
RETURNING id, delivered, attempts, created_at`
	err := repo.db.QueryRowContext(ctx, query, n.RecipientID, n.Message).
		Scan(&n.ID, &n.Delivered, &n.Attempts, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	n.DeliveryMethod = nil
	return nil
}

// UpdateLocked runs fn inside a transaction holding a row lock on the
// notification (SELECT ... FOR UPDATE). Only delivered, delivery_method and
// attempts are written back.
func (repo *NotificationRepo) UpdateLocked(ctx context.Context, id int64, fn repository.LockedUpdateFunc) error {
	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("UpdateLocked: begin: %w", err)
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			slog.Warn("rollback failed",
				slog.Int64("notification_id", id),
				slog.Any("error", rbErr))
		}
	}()

	lockQuery := `
SELECT ` + notificationColumns + `
FROM notifications
WHERE id = $1
FOR UPDATE`
	n, err := scanNotification(tx.QueryRowContext(ctx, lockQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("notification %d: %w", id, entity.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("UpdateLocked: lock: %w", err)
	}

	recipientQuery := `
SELECT ` + recipientColumns + `
FROM recipients
WHERE id = $1`
	r, err := scanRecipient(tx.QueryRowContext(ctx, recipientQuery, n.RecipientID))
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("recipient %d: %w", n.RecipientID, entity.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("UpdateLocked: recipient: %w", err)
	}

	persist, err := fn(ctx, n, r)
	if err != nil {
		return err
	}

	if persist {
		const update = `
UPDATE notifications
SET delivered = $1, delivery_method = $2, attempts = $3
WHERE id = $4`
		var method sql.NullString
		if n.DeliveryMethod != nil {
			method = sql.NullString{String: string(*n.DeliveryMethod), Valid: true}
		}
		if _, err := tx.ExecContext(ctx, update, n.Delivered, method, n.Attempts, id); err != nil {
			return fmt.Errorf("UpdateLocked: update: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("UpdateLocked: commit: %w", err)
	}
	committed = true
	return nil
}
