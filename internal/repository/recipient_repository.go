package repository

import (
	"context"

	"notify-dispatch/internal/domain/entity"
)

type RecipientRepository interface {
	Get(ctx context.Context, id int64) (*entity.Recipient, error)
	List(ctx context.Context) ([]*entity.Recipient, error)
	Create(ctx context.Context, recipient *entity.Recipient) error
}
