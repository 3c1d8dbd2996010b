package recipient

import (
	"net/http"

	"notify-dispatch/internal/handler/http/respond"
	notifUC "notify-dispatch/internal/usecase/notification"
)

type ListHandler struct{ Svc *notifUC.Service }

// @Summary      List recipients
// @Tags         recipients
// @Produce      json
// @Success      200 {array} DTO
// @Router       /recipients [get]
func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	list, err := h.Svc.ListRecipients(r.Context())
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	out := make([]DTO, 0, len(list))
	for _, rec := range list {
		out = append(out, toDTO(rec))
	}
	respond.JSON(w, http.StatusOK, out)
}
