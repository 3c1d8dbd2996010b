package recipient

import (
	"errors"
	"net/http"

	"notify-dispatch/internal/handler/http/pathutil"
	"notify-dispatch/internal/handler/http/respond"
	notifUC "notify-dispatch/internal/usecase/notification"
)

type GetHandler struct{ Svc *notifUC.Service }

// @Summary      Get a recipient
// @Tags         recipients
// @Produce      json
// @Param        id path int true "Recipient ID"
// @Success      200 {object} DTO
// @Failure      404 {string} string "Not found"
// @Router       /recipients/{id} [get]
func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.PathID(r, "id")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	rec, err := h.Svc.GetRecipient(r.Context(), id)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, notifUC.ErrRecipientNotFound) {
			code = http.StatusNotFound
		}
		respond.SafeError(w, code, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(rec))
}
