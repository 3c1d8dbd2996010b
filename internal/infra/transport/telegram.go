package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"notify-dispatch/internal/config"
)

const (
	defaultTelegramTimeout = 10 * time.Second
	maxTelegramResponse    = 1 << 20
)

// ErrMissingBotToken is reported when no bot token is configured.
var ErrMissingBotToken = errors.New("telegram bot token is not configured")

// TelegramTransport calls the bot API sendMessage method.
type TelegramTransport struct {
	cfg        config.TelegramConfig
	httpClient *http.Client
}

// NewTelegramTransport returns a transport with its own http.Client whose
// Timeout bounds the whole request.
func NewTelegramTransport(cfg config.TelegramConfig) *TelegramTransport {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTelegramTimeout
	}
	return &TelegramTransport{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
	ParseMode             string `json:"parse_mode,omitempty"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code,omitempty"`
	Description string `json:"description,omitempty"`
}

// apiError is an HTTP 200/non-200 response the API did not accept.
type apiError struct {
	StatusCode  int
	ErrorCode   int
	Description string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("telegram api rejected message: status=%d error_code=%d description=%q",
		e.StatusCode, e.ErrorCode, e.Description)
}

func (t *TelegramTransport) Send(ctx context.Context, msg ChatMessage) bool {
	if err := t.send(ctx, msg); err != nil {
		attrs := []any{slog.Any("error", err)}
		var apiErr *apiError
		if errors.As(err, &apiErr) {
			attrs = append(attrs,
				slog.Int("status", apiErr.StatusCode),
				slog.Int("error_code", apiErr.ErrorCode),
				slog.String("description", apiErr.Description))
		}
		slog.Warn("telegram delivery failed", attrs...)
		return false
	}
	return true
}

func (t *TelegramTransport) send(ctx context.Context, msg ChatMessage) error {
	if t.cfg.BotToken == "" {
		return ErrMissingBotToken
	}

	payload := sendMessageRequest{
		ChatID:                msg.ChatID,
		Text:                  msg.Text,
		DisableWebPagePreview: t.cfg.DisableWebPagePreview,
		ParseMode:             t.cfg.ParseMode,
	}
	if msg.DisableWebPagePreview != nil {
		payload.DisableWebPagePreview = *msg.DisableWebPagePreview
	}
	if msg.ParseMode != nil {
		payload.ParseMode = *msg.ParseMode
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal sendMessage: %w", err)
	}

	endpoint := strings.TrimRight(t.cfg.BaseURL, "/") + "/bot" + t.cfg.BotToken + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", stripURL(err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", stripURL(err))
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxTelegramResponse))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var out apiResponse
	decodeErr := json.Unmarshal(raw, &out)
	if resp.StatusCode == http.StatusOK && decodeErr == nil && out.OK {
		return nil
	}
	return &apiError{
		StatusCode:  resp.StatusCode,
		ErrorCode:   out.ErrorCode,
		Description: out.Description,
	}
}

// stripURL drops the request URL from net/http errors; it embeds the bot token.
func stripURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}
