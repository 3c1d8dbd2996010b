package config

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	loadcfg "notify-dispatch/internal/pkg/config"
	envcfg "notify-dispatch/pkg/config"
)

// Transport modes.
const (
	TransportLive  = "live"
	TransportDummy = "dummy"
)

// DefaultFromEmail is used when neither the recipient nor the SMTP login
// provides a sender address.
const DefaultFromEmail = "noreply@example.com"

// ChannelsConfig is the process-wide configuration of every channel transport.
// Per-recipient credentials override parts of it for a single call.
type ChannelsConfig struct {
	SMTP     SMTPConfig     `yaml:"smtp"`
	Telegram TelegramConfig `yaml:"telegram"`
	SMS      SMSConfig      `yaml:"sms"`

	// Transport selects real network transports ("live") or the offline
	// dummies that always succeed ("dummy").
	Transport string `yaml:"transport"`
}

// SMTPConfig configures the email transport.
type SMTPConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	UseTLS          bool          `yaml:"use_tls"`
	DefaultUser     string        `yaml:"default_user"`
	DefaultPassword string        `yaml:"default_password"`
	Timeout         time.Duration `yaml:"timeout"`
	// DefaultFromEmail is the last fallback for the From header.
	DefaultFromEmail string `yaml:"default_from_email"`
	// Subject of emails sent for queued notifications. Empty means the
	// sender's default.
	Subject string `yaml:"subject"`
}

// TelegramConfig configures the bot API transport.
type TelegramConfig struct {
	BotToken  string `yaml:"bot_token"`
	BaseURL   string `yaml:"base_url"`
	ParseMode string `yaml:"parse_mode"`
	// DisableWebPagePreview is sent as disable_web_page_preview.
	DisableWebPagePreview bool          `yaml:"disable_web_page_preview"`
	Timeout               time.Duration `yaml:"timeout"`
}

// SMSConfig toggles the placeholder SMS sender.
type SMSConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DefaultChannelsConfig returns the built-in defaults.
func DefaultChannelsConfig() ChannelsConfig {
	return ChannelsConfig{
		SMTP: SMTPConfig{
			Host:             "smtp.gmail.com",
			Port:             587,
			UseTLS:           true,
			Timeout:          30 * time.Second,
			DefaultFromEmail: DefaultFromEmail,
		},
		Telegram: TelegramConfig{
			BaseURL:               "https://api.telegram.org",
			DisableWebPagePreview: true,
			Timeout:               10 * time.Second,
		},
		Transport: TransportLive,
	}
}

// LoadChannelsConfig builds the channel configuration in three layers:
// defaults, then the YAML file named by CHANNELS_CONFIG_FILE (if any), then
// individual environment variables.
func LoadChannelsConfig() (*ChannelsConfig, error) {
	cfg := DefaultChannelsConfig()

	if path := os.Getenv("CHANNELS_CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid channel configuration: %w", err)
	}
	return &cfg, nil
}

func (c *ChannelsConfig) loadFile(path string) error {
	// #nosec G304 -- path comes from the operator's environment.
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read channels config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse channels config %s: %w", path, err)
	}
	return nil
}

func (c *ChannelsConfig) applyEnv() {
	c.SMTP.Host = envcfg.GetEnvString("SMTP_HOST", c.SMTP.Host)
	c.SMTP.Port = envcfg.GetEnvInt("SMTP_PORT", c.SMTP.Port)
	c.SMTP.UseTLS = envcfg.GetEnvBool("SMTP_USE_TLS", c.SMTP.UseTLS)
	c.SMTP.DefaultUser = envcfg.GetEnvString("SMTP_DEFAULT_USER", c.SMTP.DefaultUser)
	c.SMTP.DefaultPassword = envcfg.GetEnvString("SMTP_DEFAULT_PASSWORD", c.SMTP.DefaultPassword)
	c.SMTP.Timeout = envcfg.GetEnvDuration("SMTP_TIMEOUT", c.SMTP.Timeout)
	c.SMTP.DefaultFromEmail = envcfg.GetEnvString("DEFAULT_FROM_EMAIL", c.SMTP.DefaultFromEmail)
	c.SMTP.Subject = envcfg.GetEnvString("EMAIL_SUBJECT", c.SMTP.Subject)

	c.Telegram.BotToken = envcfg.GetEnvString("TELEGRAM_BOT_TOKEN", c.Telegram.BotToken)
	c.Telegram.BaseURL = envcfg.GetEnvString("TELEGRAM_BASE_URL", c.Telegram.BaseURL)
	c.Telegram.ParseMode = envcfg.GetEnvString("TELEGRAM_PARSE_MODE", c.Telegram.ParseMode)
	c.Telegram.DisableWebPagePreview = envcfg.GetEnvBool("TELEGRAM_DISABLE_WPP", c.Telegram.DisableWebPagePreview)
	c.Telegram.Timeout = envcfg.GetEnvDuration("TELEGRAM_TIMEOUT", c.Telegram.Timeout)

	c.SMS.Enabled = envcfg.GetEnvBool("SMS_ENABLED", c.SMS.Enabled)
	c.Transport = envcfg.GetEnvString("DELIVERY_TRANSPORT", c.Transport)
}

// Validate reports every invalid field at once.
func (c *ChannelsConfig) Validate() error {
	var result *multierror.Error

	if c.Transport != TransportLive && c.Transport != TransportDummy {
		result = multierror.Append(result, fmt.Errorf("DELIVERY_TRANSPORT must be %q or %q, got %q", TransportLive, TransportDummy, c.Transport))
	}
	if c.SMTP.Host == "" {
		result = multierror.Append(result, fmt.Errorf("SMTP_HOST cannot be empty"))
	}
	if c.SMTP.Port <= 0 || c.SMTP.Port > 65535 {
		result = multierror.Append(result, fmt.Errorf("SMTP_PORT must be between 1 and 65535, got %d", c.SMTP.Port))
	}
	if err := loadcfg.ValidatePositiveDuration(c.SMTP.Timeout); err != nil {
		result = multierror.Append(result, fmt.Errorf("SMTP_TIMEOUT: %w", err))
	}
	if c.Telegram.BaseURL == "" {
		result = multierror.Append(result, fmt.Errorf("TELEGRAM_BASE_URL cannot be empty"))
	}
	if err := loadcfg.ValidatePositiveDuration(c.Telegram.Timeout); err != nil {
		result = multierror.Append(result, fmt.Errorf("TELEGRAM_TIMEOUT: %w", err))
	}

	return result.ErrorOrNil()
}
