package notification

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
	UserID    int64               `json:"user_id"`
	Message   string              `json:"message"`
	Overrides *entity.Credentials `json:"overrides"`
}

type queuedResponse struct {
	Status string `json:"status"`
	ID     int64  `json:"id"`
}

// ServeHTTP handles POST /notifications. Delivery happens asynchronously;
// the response is 202 as soon as the notification is stored.
// @Summary      Queue a notification
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Param        notification body createRequest true "Recipient and message"
// @Success      202 {object} queuedResponse
// @Failure      400 {string} string "Bad request - invalid input"
// @Failure      404 {string} string "Recipient not found"
// @Router       /notifications [post]
func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid JSON body"))
		return
	}

	in := notifUC.CreateNotificationInput{
		RecipientID: req.UserID,
		Message:     req.Message,
	}
	if req.Overrides != nil && !req.Overrides.IsZero() {
		in.Overrides = req.Overrides
	}

	n, err := h.Svc.CreateNotification(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusAccepted, queuedResponse{Status: "queued", ID: n.ID})
}
