package notification

import (
	"net/http"

	"notify-dispatch/internal/handler/http/pathutil"
	"notify-dispatch/internal/handler/http/respond"
	notifUC "notify-dispatch/internal/usecase/notification"
)

type GetHandler struct{ Svc *notifUC.Service }

// @Summary      Get a notification
// @Tags         notifications
// @Produce      json
// @Param        id path int true "Notification ID"
// @Success      200 {object} DTO
// @Failure      400 {string} string "Invalid ID"
// @Failure      404 {string} string "Not found"
// @Router       /notifications/{id} [get]
func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.PathID(r, "id")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	n, err := h.Svc.GetNotification(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(n))
}

type ListHandler struct{ Svc *notifUC.Service }

// ServeHTTP lists notifications newest first.
// @Summary      List notifications
// @Tags         notifications
// @Produce      json
// @Success      200 {array} DTO
// @Router       /notifications [get]
func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	list, err := h.Svc.ListNotifications(r.Context())
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	out := make([]DTO, 0, len(list))
	for _, n := range list {
		out = append(out, toDTO(n))
	}
	respond.JSON(w, http.StatusOK, out)
}
