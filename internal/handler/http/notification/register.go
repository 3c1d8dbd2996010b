package notification

import (
	"net/http"

	notifUC "notify-dispatch/internal/usecase/notification"
)

// Register mounts the notification and direct-send routes on mux.
func Register(mux *http.ServeMux, svc *notifUC.Service) {
	mux.Handle("POST /notifications", CreateHandler{svc})
	mux.Handle("GET /notifications", ListHandler{svc})
	mux.Handle("GET /notifications/{id}", GetHandler{svc})
	mux.Handle("POST /notifications/{id}/retry", RetryHandler{svc})

	mux.Handle("POST /send/email", SendEmailHandler{svc})
	mux.Handle("POST /send/telegram", SendTelegramHandler{svc})
}
