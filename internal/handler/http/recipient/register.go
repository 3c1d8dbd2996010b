package recipient

import (
	"net/http"

	notifUC "notify-dispatch/internal/usecase/notification"
)

// Register mounts the recipient routes on mux.
func Register(mux *http.ServeMux, svc *notifUC.Service) {
	mux.Handle("POST /recipients", CreateHandler{svc})
	mux.Handle("GET /recipients", ListHandler{svc})
	mux.Handle("GET /recipients/{id}", GetHandler{svc})
}
