package recipient

import (
	"encoding/json"
	"errors"
	"net/http"

	"notify-dispatch/internal/domain/entity"
	"notify-dispatch/internal/handler/http/respond"
	notifUC "notify-dispatch/internal/usecase/notification"
)

type CreateHandler struct{ Svc *notifUC.Service }

type createRequest struct {
	Email       string              `json:"email"`
	Phone       string              `json:"phone"`
	TelegramID  string              `json:"telegram_id"`
	Credentials *entity.Credentials `json:"credentials"`
}

// ServeHTTP handles POST /recipients and answers 201 {"id": ...}.
// @Summary      Register a recipient
// @Tags         recipients
// @Accept       json
// @Produce      json
// @Param        recipient body createRequest true "Contact addresses and credentials"
// @Success      201 {object} map[string]int64
// @Failure      400 {string} string "Bad request - invalid input"
// @Router       /recipients [post]
func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid JSON body"))
		return
	}

	in := notifUC.CreateRecipientInput{
		Email:      req.Email,
		Phone:      req.Phone,
		TelegramID: req.TelegramID,
	}
	if req.Credentials != nil {
		in.Credentials = *req.Credentials
	}

	rec, err := h.Svc.CreateRecipient(r.Context(), in)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, entity.ErrValidationFailed) {
			code = http.StatusBadRequest
		}
		respond.SafeError(w, code, err)
		return
	}
	respond.JSON(w, http.StatusCreated, map[string]int64{"id": rec.ID})
}
