package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notify-dispatch/internal/config"
)

func newTelegramServer(t *testing.T, status int, body string, got *sendMessageRequest, path *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if path != nil {
			*path = r.URL.Path
		}
		if got != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(got))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func telegramConfig(baseURL string) config.TelegramConfig {
	return config.TelegramConfig{
		BotToken:              "123:abc",
		BaseURL:               baseURL,
		DisableWebPagePreview: true,
		Timeout:               2 * time.Second,
	}
}

func TestTelegramTransport_Send_Success(t *testing.T) {
	// Arrange
	var got sendMessageRequest
	var path string
	srv := newTelegramServer(t, http.StatusOK, `{"ok":true,"result":{"message_id":1}}`, &got, &path)
	tr := NewTelegramTransport(telegramConfig(srv.URL + "/"))

	// Act
	ok := tr.Send(context.Background(), ChatMessage{ChatID: "42", Text: "hello"})

	// Assert
	assert.True(t, ok)
	assert.Equal(t, "/bot123:abc/sendMessage", path)
	assert.Equal(t, "42", got.ChatID)
	assert.Equal(t, "hello", got.Text)
	assert.True(t, got.DisableWebPagePreview)
	assert.Empty(t, got.ParseMode)
}

func TestTelegramTransport_Send_PerCallOptions(t *testing.T) {
	var got sendMessageRequest
	srv := newTelegramServer(t, http.StatusOK, `{"ok":true}`, &got, nil)
	cfg := telegramConfig(srv.URL)
	cfg.ParseMode = "HTML"
	tr := NewTelegramTransport(cfg)

	mode := "MarkdownV2"
	preview := false
	ok := tr.Send(context.Background(), ChatMessage{
		ChatID: "42", Text: "*hi*", ParseMode: &mode, DisableWebPagePreview: &preview,
	})

	require.True(t, ok)
	assert.Equal(t, "MarkdownV2", got.ParseMode)
	assert.False(t, got.DisableWebPagePreview)
}

func TestTelegramTransport_Send_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "200 with ok false", status: http.StatusOK, body: `{"ok":false,"error_code":400,"description":"chat not found"}`},
		{name: "200 without ok field", status: http.StatusOK, body: `{"result":{}}`},
		{name: "200 with malformed body", status: http.StatusOK, body: `not json`},
		{name: "401 unauthorized", status: http.StatusUnauthorized, body: `{"ok":false,"error_code":401,"description":"Unauthorized"}`},
		{name: "500 with ok true body", status: http.StatusInternalServerError, body: `{"ok":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTelegramServer(t, tt.status, tt.body, nil, nil)
			tr := NewTelegramTransport(telegramConfig(srv.URL))

			assert.False(t, tr.Send(context.Background(), ChatMessage{ChatID: "42", Text: "x"}))
		})
	}
}

func TestTelegramTransport_Send_MissingToken(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()
	cfg := telegramConfig(srv.URL)
	cfg.BotToken = ""

	ok := NewTelegramTransport(cfg).Send(context.Background(), ChatMessage{ChatID: "1", Text: "x"})

	assert.False(t, ok)
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestTelegramTransport_Send_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()
	cfg := telegramConfig(srv.URL)
	cfg.Timeout = 50 * time.Millisecond

	start := time.Now()
	ok := NewTelegramTransport(cfg).Send(context.Background(), ChatMessage{ChatID: "1", Text: "x"})

	assert.False(t, ok)
	assert.Less(t, time.Since(start), 250*time.Millisecond)
}

func TestStripURL_HidesToken(t *testing.T) {
	cfg := telegramConfig("http://127.0.0.1:1")
	tr := NewTelegramTransport(cfg)

	err := tr.send(context.Background(), ChatMessage{ChatID: "1", Text: "x"})

	require.Error(t, err)
	assert.NotContains(t, err.Error(), "123:abc")
}
