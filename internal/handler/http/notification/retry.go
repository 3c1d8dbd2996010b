package notification

import (
	"net/http"

	"notify-dispatch/internal/handler/http/pathutil"
	"notify-dispatch/internal/handler/http/respond"
	notifUC "notify-dispatch/internal/usecase/notification"
)

type RetryHandler struct{ Svc *notifUC.Service }

// ServeHTTP handles POST /notifications/{id}/retry. A delivered
// notification answers 409.
// @Summary      Retry a notification
// @Tags         notifications
// @Produce      json
// @Param        id path int true "Notification ID"
// @Success      202 {object} queuedResponse
// @Failure      404 {string} string "Not found"
// @Failure      409 {string} string "Already delivered"
// @Router       /notifications/{id}/retry [post]
func (h RetryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.PathID(r, "id")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.Svc.Retry(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusAccepted, queuedResponse{Status: "queued", ID: id})
}
