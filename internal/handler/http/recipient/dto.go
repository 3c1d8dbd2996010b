// Package recipient serves the /recipients endpoints.
package recipient

import (
	"time"

	"notify-dispatch/internal/domain/entity"
)

// DTO is the public view of a recipient. Credentials are never returned.
type DTO struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	TelegramID     string    `json:"telegram_id,omitempty"`
	HasCredentials bool      `json:"has_credentials"`
	CreatedAt      time.Time `json:"created_at"`
}

func toDTO(r *entity.Recipient) DTO {
	return DTO{
		ID:             r.ID,
		Email:          r.Email,
		Phone:          r.Phone,
		TelegramID:     r.TelegramID,
		HasCredentials: !r.Credentials.IsZero(),
		CreatedAt:      r.CreatedAt,
	}
}
