package http

import (
	"log/slog"
	"net/http"
	"time"

	"notify-dispatch/internal/config"
	"notify-dispatch/internal/handler/http/notification"
	"notify-dispatch/internal/handler/http/recipient"
	"notify-dispatch/internal/handler/http/requestid"
	"notify-dispatch/internal/observability/tracing"
	notifUC "notify-dispatch/internal/usecase/notification"
)

// RouterConfig carries the API's collaborators. DB and Queue are optional
// and only feed /health.
type RouterConfig struct {
	Logger   *slog.Logger
	Service  *notifUC.Service
	Channels *config.ChannelsConfig
	DB       DBChecker
	Queue    QueueDepth
	Version  string
	// CORS is optional; the zero value disables it.
	CORS CORSConfig
	// RequestTimeout bounds API handlers. Direct sends run inside it.
	RequestTimeout time.Duration
}

// NewRouter builds the API handler. Middleware order, outermost first:
// CORS, request id, recover, tracing, access log, metrics, input limits,
// timeout.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	mux := http.NewServeMux()
	recipient.Register(mux, cfg.Service)
	notification.Register(mux, cfg.Service)

	mux.Handle("GET /health", &HealthHandler{DB: cfg.DB, Queue: cfg.Queue, Version: cfg.Version})
	mux.Handle("GET /health/channels", &ChannelsHandler{Chain: cfg.Service.Chain, Config: cfg.Channels})
	mux.Handle("GET /metrics", MetricsHandler())

	return Chain(mux,
		CORS(cfg.CORS, cfg.Logger),
		requestid.Middleware,
		Recover(cfg.Logger),
		tracing.Middleware,
		Logging(cfg.Logger),
		MetricsMiddleware,
		InputValidation(MaxBodyBytes),
		Timeout(cfg.RequestTimeout),
	)
}
