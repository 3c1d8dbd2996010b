// Package notification serves the /notifications endpoints and the
// one-shot /send endpoints.
package notification

import (
	"errors"
	"net/http"
	"time"

	"notify-dispatch/internal/domain/entity"
	"notify-dispatch/internal/handler/http/respond"
	notifUC "notify-dispatch/internal/usecase/notification"
)

type DTO struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	Message        string    `json:"message"`
	Delivered      bool      `json:"delivered"`
	DeliveryMethod *string   `json:"delivery_method"`
	Attempts       int       `json:"attempts"`
	CreatedAt      time.Time `json:"created_at"`
}

func toDTO(n *entity.Notification) DTO {
	out := DTO{
		ID:        n.ID,
		UserID:    n.RecipientID,
		Message:   n.Message,
		Delivered: n.Delivered,
		Attempts:  n.Attempts,
		CreatedAt: n.CreatedAt,
	}
	if n.DeliveryMethod != nil {
		m := n.DeliveryMethod.String()
		out.DeliveryMethod = &m
	}
	return out
}

// statusFor maps use case errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrValidationFailed):
		return http.StatusBadRequest
	case errors.Is(err, notifUC.ErrRecipientNotFound),
		errors.Is(err, notifUC.ErrNotificationNotFound):
		return http.StatusNotFound
	case errors.Is(err, notifUC.ErrAlreadyDelivered):
		return http.StatusConflict
	case errors.Is(err, notifUC.ErrNotDelivered):
		return http.StatusBadGateway
	case errors.Is(err, notifUC.ErrChannelUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers with the mapped status. Send failures keep their
// sentinel message; other 5xx responses are sanitized by respond.
func writeError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	switch {
	case errors.Is(err, notifUC.ErrNotDelivered):
		err = respond.NewAppError(code, notifUC.ErrNotDelivered.Error(), err)
	case errors.Is(err, notifUC.ErrChannelUnavailable):
		err = respond.NewAppError(code, notifUC.ErrChannelUnavailable.Error(), err)
	}
	respond.SafeError(w, code, err)
}
