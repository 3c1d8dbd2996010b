package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearChannelEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CHANNELS_CONFIG_FILE", "SMTP_HOST", "SMTP_PORT", "SMTP_USE_TLS",
		"SMTP_DEFAULT_USER", "SMTP_DEFAULT_PASSWORD", "SMTP_TIMEOUT", "DEFAULT_FROM_EMAIL", "EMAIL_SUBJECT",
		"TELEGRAM_BOT_TOKEN", "TELEGRAM_BASE_URL", "TELEGRAM_PARSE_MODE",
		"TELEGRAM_DISABLE_WPP", "TELEGRAM_TIMEOUT", "SMS_ENABLED", "DELIVERY_TRANSPORT",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadChannelsConfig_Defaults(t *testing.T) {
	clearChannelEnv(t)

	cfg, err := LoadChannelsConfig()

	require.NoError(t, err)
	assert.Equal(t, "smtp.gmail.com", cfg.SMTP.Host)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.True(t, cfg.SMTP.UseTLS)
	assert.Equal(t, 30*time.Second, cfg.SMTP.Timeout)
	assert.Equal(t, DefaultFromEmail, cfg.SMTP.DefaultFromEmail)
	assert.Equal(t, "https://api.telegram.org", cfg.Telegram.BaseURL)
	assert.True(t, cfg.Telegram.DisableWebPagePreview)
	assert.Equal(t, 10*time.Second, cfg.Telegram.Timeout)
	assert.Equal(t, TransportLive, cfg.Transport)
	assert.False(t, cfg.SMS.Enabled)
}

func TestLoadChannelsConfig_EnvOverrides(t *testing.T) {
	clearChannelEnv(t)
	t.Setenv("SMTP_HOST", "mail.internal")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("SMTP_USE_TLS", "false")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_PARSE_MODE", "HTML")
	t.Setenv("DELIVERY_TRANSPORT", "dummy")
	t.Setenv("SMS_ENABLED", "true")
	t.Setenv("EMAIL_SUBJECT", "Account alert")

	cfg, err := LoadChannelsConfig()

	require.NoError(t, err)
	assert.Equal(t, "mail.internal", cfg.SMTP.Host)
	assert.Equal(t, 2525, cfg.SMTP.Port)
	assert.False(t, cfg.SMTP.UseTLS)
	assert.Equal(t, "123:abc", cfg.Telegram.BotToken)
	assert.Equal(t, "HTML", cfg.Telegram.ParseMode)
	assert.Equal(t, TransportDummy, cfg.Transport)
	assert.True(t, cfg.SMS.Enabled)
	assert.Equal(t, "Account alert", cfg.SMTP.Subject)
}

func TestLoadChannelsConfig_FileThenEnv(t *testing.T) {
	clearChannelEnv(t)
	path := filepath.Join(t.TempDir(), "channels.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
smtp:
  host: smtp.example.org
  port: 465
  timeout: 5s
telegram:
  bot_token: file-token
  disable_web_page_preview: false
`), 0o600))
	t.Setenv("CHANNELS_CONFIG_FILE", path)
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")

	cfg, err := LoadChannelsConfig()

	require.NoError(t, err)
	assert.Equal(t, "smtp.example.org", cfg.SMTP.Host)
	assert.Equal(t, 465, cfg.SMTP.Port)
	assert.Equal(t, 5*time.Second, cfg.SMTP.Timeout)
	assert.True(t, cfg.SMTP.UseTLS, "unset keys keep defaults")
	assert.False(t, cfg.Telegram.DisableWebPagePreview)
	assert.Equal(t, "env-token", cfg.Telegram.BotToken)
}

func TestLoadChannelsConfig_MissingFile(t *testing.T) {
	clearChannelEnv(t)
	t.Setenv("CHANNELS_CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := LoadChannelsConfig()

	assert.Error(t, err)
}

func TestChannelsConfig_Validate_CollectsAllErrors(t *testing.T) {
	cfg := DefaultChannelsConfig()
	cfg.Transport = "carrier-pigeon"
	cfg.SMTP.Port = 0
	cfg.SMTP.Timeout = -time.Second
	cfg.Telegram.Timeout = 0

	err := cfg.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "DELIVERY_TRANSPORT")
	assert.Contains(t, err.Error(), "SMTP_PORT")
	assert.Contains(t, err.Error(), "SMTP_TIMEOUT")
	assert.Contains(t, err.Error(), "TELEGRAM_TIMEOUT")
}

func TestChannelsConfig_Validate_Defaults(t *testing.T) {
	cfg := DefaultChannelsConfig()
	assert.NoError(t, cfg.Validate())
}
