package http_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notify-dispatch/internal/config"
	"notify-dispatch/internal/domain/entity"
	handler "notify-dispatch/internal/handler/http"
	"notify-dispatch/internal/handler/http/requestid"
	"notify-dispatch/internal/infra/adapter/persistence/memory"
	"notify-dispatch/internal/infra/queue"
	"notify-dispatch/internal/usecase/delivery"
	notifUC "notify-dispatch/internal/usecase/notification"
)

type okSender struct{}

func (okSender) Channel() entity.Channel { return entity.ChannelEmail }
func (okSender) Priority() int           { return delivery.PriorityEmail }
func (okSender) Deliver(context.Context, *entity.Recipient, string, delivery.Options) (bool, error) {
	return true, nil
}

func newTestRouter(t *testing.T) (http.Handler, *queue.MemoryQueue) {
	t.Helper()
	store := memory.NewStore()
	q := queue.NewMemoryQueue()
	t.Cleanup(func() { _ = q.Close() })

	cfg := config.DefaultChannelsConfig()
	router := handler.NewRouter(handler.RouterConfig{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Service: &notifUC.Service{
			Recipients:    store.Recipients(),
			Notifications: store.Notifications(),
			Queue:         q,
			Chain:         delivery.NewChain(okSender{}),
		},
		Channels: &cfg,
		Queue:    q,
		Version:  "test",
	})
	return router, q
}

func TestRouter_NotificationFlow(t *testing.T) {
	router, q := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/recipients",
		strings.NewReader(`{"email":"ann@example.com"}`)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(requestid.RequestIDHeader))

	req := httptest.NewRequest(http.MethodPost, "/notifications",
		strings.NewReader(`{"user_id":1,"message":"backup complete"}`))
	req.Header.Set(requestid.RequestIDHeader, "flow-1")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	assert.Equal(t, "flow-1", rec.Header().Get(requestid.RequestIDHeader))

	n, err := q.Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications/1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"delivered":false`)
}

func TestRouter_Health(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"queue"`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/channels", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email"`)
}

func TestRouter_UnknownRoute(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/notifications/1", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
