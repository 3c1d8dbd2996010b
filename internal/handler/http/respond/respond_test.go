package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusAccepted, map[string]any{"status": "queued", "id": 7})

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"queued","id":7}`, rec.Body.String())
}

func TestJSON_NilBody(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusNoContent, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestSafeError(t *testing.T) {
	tests := []struct {
		name string
		code int
		err  error
		want string
	}{
		{"validation", http.StatusBadRequest, errors.New("message cannot be empty"), "message cannot be empty"},
		{"not found", http.StatusNotFound, errors.New("recipient not found"), "recipient not found"},
		{"conflict", http.StatusConflict, errors.New("notification already delivered"), "notification already delivered"},
		{"internal detail on 4xx", http.StatusBadRequest, errors.New("pq: connection reset"), "internal server error"},
		{"5xx always hidden", http.StatusInternalServerError, errors.New("invalid memory address"), "internal server error"},
		{"app error", http.StatusInternalServerError, NewAppError(http.StatusServiceUnavailable, "try later", errors.New("db down")), "try later"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			SafeError(rec, tt.code, tt.err)
			assert.Equal(t, tt.want, decode(t, rec)["error"])
		})
	}
}

func TestSafeError_AppErrorCode(t *testing.T) {
	rec := httptest.NewRecorder()
	SafeError(rec, http.StatusInternalServerError,
		fmt.Errorf("wrap: %w", NewAppError(http.StatusServiceUnavailable, "try later", nil)))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSafeError_Nil(t *testing.T) {
	rec := httptest.NewRecorder()
	SafeError(rec, http.StatusBadRequest, nil)
	assert.Empty(t, rec.Body.String())
}

func TestSanitizeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			"telegram token",
			errors.New(`Post "https://api.telegram.org/bot123456:AAE-x_yz/sendMessage": timeout`),
			`Post "https://api.telegram.org/bot****/sendMessage": timeout`,
		},
		{
			"dsn password",
			errors.New("dial postgres://notify:s3cret@db:5432/notify failed"),
			"dial postgres://notify:****@db:5432/notify failed",
		},
		{
			"kv password",
			errors.New("connect host=db user=notify password=s3cret dbname=notify"),
			"connect host=db user=notify password=**** dbname=notify",
		},
		{"plain", errors.New("smtp: 535 auth failed"), "smtp: 535 auth failed"},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeError(tt.err))
		})
	}
}
