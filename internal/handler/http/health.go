// Package http wires the JSON API: routing, middleware, health and
// channel status endpoints. Resource handlers live in subpackages.
package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"notify-dispatch/internal/config"
	"notify-dispatch/internal/domain/entity"
	"notify-dispatch/internal/observability/metrics"
	"notify-dispatch/internal/usecase/delivery"
)

type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks"`
	Version   string                 `json:"version"`
}

type CheckStatus struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// DBChecker is satisfied by *sql.DB.
type DBChecker interface {
	PingContext(ctx context.Context) error
	Stats() sql.DBStats
}

// QueueDepth reports the number of waiting jobs.
type QueueDepth interface {
	Len(ctx context.Context) (int, error)
}

// HealthHandler answers GET /health. A nil DB means the process runs on the
// in-memory store; the database check is then omitted.
type HealthHandler struct {
	DB      DBChecker
	Queue   QueueDepth
	Version string
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]CheckStatus)
	healthy := true

	if h.DB != nil {
		c := h.checkDatabase(ctx)
		checks["database"] = c
		if c.Status == "unhealthy" {
			healthy = false
		}
	}
	if h.Queue != nil {
		c := h.checkQueue(ctx)
		checks["queue"] = c
		if c.Status == "unhealthy" {
			healthy = false
		}
	}

	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	}
	code := http.StatusOK
	if !healthy {
		resp.Status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Default().Error("health: encode response", slog.Any("error", err))
	}
}

func (h *HealthHandler) checkDatabase(ctx context.Context) CheckStatus {
	if err := h.DB.PingContext(ctx); err != nil {
		return CheckStatus{Status: "unhealthy", Message: err.Error()}
	}

	stats := h.DB.Stats()
	metrics.UpdateDBStats(stats)
	details := map[string]any{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
	}

	// Each in-flight delivery attempt holds a connection for its row lock,
	// so a saturated pool stalls the dispatcher.
	if stats.MaxOpenConnections > 0 {
		utilization := float64(stats.InUse) / float64(stats.MaxOpenConnections) * 100
		details["utilization_percent"] = utilization
		if utilization >= 80 {
			return CheckStatus{Status: "degraded", Message: "connection pool utilization above 80%", Details: details}
		}
	}
	return CheckStatus{Status: "healthy", Details: details}
}

func (h *HealthHandler) checkQueue(ctx context.Context) CheckStatus {
	n, err := h.Queue.Len(ctx)
	if err != nil {
		return CheckStatus{Status: "unhealthy", Message: err.Error()}
	}
	return CheckStatus{Status: "healthy", Details: map[string]any{"depth": n}}
}

// ChannelStatus describes one registered sender.
type ChannelStatus struct {
	Name     string `json:"name"`
	Priority int    `json:"priority"`
	// Configured is false when the channel has no process-wide credentials
	// and only works for recipients that carry their own.
	Configured bool `json:"configured"`
}

type ChannelHealthResponse struct {
	Healthy   bool            `json:"healthy"`
	Transport string          `json:"transport"`
	Channels  []ChannelStatus `json:"channels"`
}

// ChannelsHandler answers GET /health/channels with the delivery chain in
// the order it is tried. An empty chain is unhealthy.
type ChannelsHandler struct {
	Chain  *delivery.Chain
	Config *config.ChannelsConfig
}

func (h *ChannelsHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	resp := ChannelHealthResponse{Channels: []ChannelStatus{}}
	if h.Config != nil {
		resp.Transport = h.Config.Transport
	}
	if h.Chain != nil {
		for _, s := range h.Chain.Senders() {
			resp.Channels = append(resp.Channels, ChannelStatus{
				Name:       s.Channel().String(),
				Priority:   s.Priority(),
				Configured: h.configured(s.Channel()),
			})
		}
	}
	resp.Healthy = len(resp.Channels) > 0

	code := http.StatusOK
	if !resp.Healthy {
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *ChannelsHandler) configured(ch entity.Channel) bool {
	if h.Config == nil || h.Config.Transport == config.TransportDummy {
		return true
	}
	switch ch {
	case entity.ChannelEmail:
		return h.Config.SMTP.Host != "" && h.Config.SMTP.DefaultUser != ""
	case entity.ChannelTelegram:
		return h.Config.Telegram.BotToken != ""
	default:
		return true
	}
}
