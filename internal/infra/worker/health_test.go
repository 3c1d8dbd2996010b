package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, healthResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var body healthResponse
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestHealthServer_Liveness(t *testing.T) {
	h := NewHealthServer(":0", slog.New(slog.NewTextHandler(io.Discard, nil)))
	rec, body := get(t, h.Handler(), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body.Status)
}

func TestHealthServer_Readiness(t *testing.T) {
	h := NewHealthServer(":0", slog.New(slog.NewTextHandler(io.Discard, nil)))

	rec, body := get(t, h.Handler(), "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "not ready", body.Status)

	h.SetReady(true)
	rec, body = get(t, h.Handler(), "/health/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body.Status)
}

func TestHealthServer_ReadinessChecks(t *testing.T) {
	h := NewHealthServer(":0", slog.New(slog.NewTextHandler(io.Discard, nil)))
	h.SetReady(true)
	h.AddCheck("database", func(context.Context) error { return nil })
	h.AddCheck("redis", func(context.Context) error { return errors.New("connection refused") })

	rec, body := get(t, h.Handler(), "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, map[string]string{
		"database": "ok",
		"redis":    "connection refused",
	}, body.Checks)
}

func TestHealthServer_Metrics(t *testing.T) {
	h := NewHealthServer(":0", slog.New(slog.NewTextHandler(io.Discard, nil)))
	rec := httptest.NewRecorder()
	h.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestHealthServer_Mount(t *testing.T) {
	h := NewHealthServer(":0", slog.New(slog.NewTextHandler(io.Discard, nil)))
	h.Mount("GET /health/channels", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec, _ := get(t, h.Handler(), "/health/channels")
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestHealthServer_StartStops(t *testing.T) {
	h := NewHealthServer("127.0.0.1:0", slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Start(ctx) }()
	cancel()
	err := <-done
	assert.ErrorIs(t, err, http.ErrServerClosed)
}
