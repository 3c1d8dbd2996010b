package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"notify-dispatch/internal/domain/entity"
	"notify-dispatch/internal/repository"
)

type RecipientRepo struct{ db DB }

func NewRecipientRepo(db DB) repository.RecipientRepository {
	return &RecipientRepo{db: db}
}

const recipientColumns = `id, email, phone, telegram_id, smtp_user, smtp_password, from_email, telegram_bot_token, created_at`

func scanRecipient(row rowScanner) (*entity.Recipient, error) {
	var r entity.Recipient
	if err := row.Scan(
		&r.ID, &r.Email, &r.Phone, &r.TelegramID,
		&r.Credentials.SMTPUser, &r.Credentials.SMTPPassword,
		&r.Credentials.FromEmail, &r.Credentials.TelegramBotToken,
		&r.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &r, nil
}

func (repo *RecipientRepo) Get(ctx context.Context, id int64) (*entity.Recipient, error) {
	query := `
SELECT ` + recipientColumns + `
FROM recipients
WHERE id = $1
LIMIT 1`
	r, err := scanRecipient(repo.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return r, nil
}

func (repo *RecipientRepo) List(ctx context.Context) ([]*entity.Recipient, error) {
	query := `
SELECT ` + recipientColumns + `
FROM recipients
ORDER BY id ASC`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	recipients := make([]*entity.Recipient, 0, 50)
	for rows.Next() {
		r, err := scanRecipient(rows)
		if err != nil {
			return nil, fmt.Errorf("List: %w", err)
		}
		recipients = append(recipients, r)
	}
	return recipients, rows.Err()
}

func (repo *RecipientRepo) Create(ctx context.Context, r *entity.Recipient) error {
	const query = `
INSERT INTO recipients
(email, phone, telegram_id, smtp_user, smtp_password, from_email, telegram_bot_token)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, created_at`
	err := repo.db.QueryRowContext(ctx, query,
		r.Email, r.Phone, r.TelegramID,
		r.Credentials.SMTPUser, r.Credentials.SMTPPassword,
		r.Credentials.FromEmail, r.Credentials.TelegramBotToken,
	).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}
