package delivery_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notify-dispatch/internal/config"
	"notify-dispatch/internal/domain/entity"
	"notify-dispatch/internal/infra/transport"
	"notify-dispatch/internal/usecase/delivery"
)

// emailFactory hands out one dummy transport per configuration it is asked for.
type emailFactory struct {
	configs    []config.SMTPConfig
	transports []*transport.DummyEmailTransport
}

func (f *emailFactory) build(cfg config.SMTPConfig) transport.EmailTransport {
	tr := &transport.DummyEmailTransport{}
	f.configs = append(f.configs, cfg)
	f.transports = append(f.transports, tr)
	return tr
}

type chatFactory struct {
	configs    []config.TelegramConfig
	transports []*transport.DummyChatTransport
}

func (f *chatFactory) build(cfg config.TelegramConfig) transport.ChatTransport {
	tr := &transport.DummyChatTransport{}
	f.configs = append(f.configs, cfg)
	f.transports = append(f.transports, tr)
	return tr
}

// failingChat rejects every message.
type failingChat struct{ calls int }

func (f *failingChat) Send(context.Context, transport.ChatMessage) bool {
	f.calls++
	return false
}

func baseSMTP() config.SMTPConfig {
	return config.SMTPConfig{
		Host:             "smtp.example.com",
		Port:             587,
		UseTLS:           true,
		DefaultUser:      "bot@example.com",
		DefaultPassword:  "base-secret",
		DefaultFromEmail: "noreply@example.com",
	}
}

func baseTelegram() config.TelegramConfig {
	return config.TelegramConfig{BotToken: "base-token", BaseURL: "https://api.telegram.org"}
}

/* ─────────────────────────── email ─────────────────────────── */

func TestEmailSender_NoAddress(t *testing.T) {
	f := &emailFactory{}
	s := delivery.NewEmailSender(baseSMTP(), f.build)

	ok, err := s.Deliver(context.Background(), &entity.Recipient{ID: 1, TelegramID: "1"}, "hi", delivery.Options{})

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, f.transports[0].Calls())
}

func TestEmailSender_DefaultTransport(t *testing.T) {
	f := &emailFactory{}
	s := delivery.NewEmailSender(baseSMTP(), f.build)

	ok, err := s.Deliver(context.Background(), &entity.Recipient{ID: 1, Email: "u@example.com"}, "hi", delivery.Options{})

	require.NoError(t, err)
	assert.True(t, ok)
	require.Len(t, f.transports, 1, "no one-off transport without overrides")

	calls := f.transports[0].Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, transport.EmailMessage{
		From:    "bot@example.com",
		To:      "u@example.com",
		Subject: delivery.DefaultSubject,
		Body:    "hi",
	}, calls[0])
}

func TestEmailSender_FromAddressFallbacks(t *testing.T) {
	tests := []struct {
		name  string
		base  func(config.SMTPConfig) config.SMTPConfig
		creds entity.Credentials
		want  string
	}{
		{
			name:  "recipient from email",
			base:  func(c config.SMTPConfig) config.SMTPConfig { return c },
			creds: entity.Credentials{FromEmail: "me@example.com"},
			want:  "me@example.com",
		},
		{
			name: "configured fallback without default user",
			base: func(c config.SMTPConfig) config.SMTPConfig {
				c.DefaultUser, c.DefaultPassword = "", ""
				return c
			},
			want: "noreply@example.com",
		},
		{
			name: "package fallback",
			base: func(c config.SMTPConfig) config.SMTPConfig {
				c.DefaultUser, c.DefaultPassword, c.DefaultFromEmail = "", "", ""
				return c
			},
			want: config.DefaultFromEmail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &emailFactory{}
			s := delivery.NewEmailSender(tt.base(baseSMTP()), f.build)
			r := &entity.Recipient{ID: 1, Email: "u@example.com", Credentials: tt.creds}

			ok, err := s.Deliver(context.Background(), r, "hi", delivery.Options{Subject: "S"})

			require.NoError(t, err)
			require.True(t, ok)
			calls := f.transports[len(f.transports)-1].Calls()
			require.Len(t, calls, 1)
			assert.Equal(t, tt.want, calls[0].From)
			assert.Equal(t, "S", calls[0].Subject)
		})
	}
}

func TestEmailSender_OverrideUsesOneOffTransport(t *testing.T) {
	f := &emailFactory{}
	base := baseSMTP()
	s := delivery.NewEmailSender(base, f.build)
	r := &entity.Recipient{
		ID:    1,
		Email: "u@example.com",
		Credentials: entity.Credentials{
			SMTPUser:     "alice@example.com",
			SMTPPassword: "alice-secret",
		},
	}

	ok, err := s.Deliver(context.Background(), r, "hi", delivery.Options{})
	require.NoError(t, err)
	require.True(t, ok)

	require.Len(t, f.configs, 2)
	assert.Equal(t, "alice@example.com", f.configs[1].DefaultUser)
	assert.Equal(t, "alice-secret", f.configs[1].DefaultPassword)
	assert.Empty(t, f.transports[0].Calls(), "default transport untouched")
	assert.Len(t, f.transports[1].Calls(), 1)

	// A later plain recipient goes through the unchanged default transport.
	ok, err = s.Deliver(context.Background(), &entity.Recipient{ID: 2, Email: "v@example.com"}, "hi", delivery.Options{})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, f.configs, 2)
	assert.Len(t, f.transports[0].Calls(), 1)
	assert.Equal(t, base, f.configs[0])
}

func TestEmailSender_PartialOverrideKeepsDefaultPassword(t *testing.T) {
	f := &emailFactory{}
	s := delivery.NewEmailSender(baseSMTP(), f.build)
	r := &entity.Recipient{
		ID:          1,
		Email:       "u@example.com",
		Credentials: entity.Credentials{SMTPUser: "alice@example.com"},
	}

	_, err := s.Deliver(context.Background(), r, "hi", delivery.Options{})
	require.NoError(t, err)

	require.Len(t, f.configs, 2)
	assert.Equal(t, "alice@example.com", f.configs[1].DefaultUser)
	assert.Equal(t, "base-secret", f.configs[1].DefaultPassword)
}

func TestEmailSender_SameCredentialsAsDefault(t *testing.T) {
	f := &emailFactory{}
	s := delivery.NewEmailSender(baseSMTP(), f.build)
	r := &entity.Recipient{
		ID:          1,
		Email:       "u@example.com",
		Credentials: entity.Credentials{SMTPUser: "bot@example.com", SMTPPassword: "base-secret"},
	}

	_, err := s.Deliver(context.Background(), r, "hi", delivery.Options{})
	require.NoError(t, err)
	assert.Len(t, f.configs, 1)
}

/* ─────────────────────────── telegram ─────────────────────────── */

func TestTelegramSender_NoAddress(t *testing.T) {
	f := &chatFactory{}
	s := delivery.NewTelegramSender(baseTelegram(), f.build)

	ok, err := s.Deliver(context.Background(), &entity.Recipient{ID: 1, Email: "u@example.com"}, "hi", delivery.Options{})

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, f.transports[0].Calls())
}

func TestTelegramSender_MissingToken(t *testing.T) {
	f := &chatFactory{}
	s := delivery.NewTelegramSender(config.TelegramConfig{}, f.build)

	ok, err := s.Deliver(context.Background(), &entity.Recipient{ID: 1, TelegramID: "42"}, "hi", delivery.Options{})

	assert.False(t, ok)
	assert.ErrorIs(t, err, transport.ErrMissingBotToken)
	assert.Empty(t, f.transports[0].Calls())
}

func TestTelegramSender_RecipientTokenWithoutBaseToken(t *testing.T) {
	f := &chatFactory{}
	s := delivery.NewTelegramSender(config.TelegramConfig{}, f.build)
	r := &entity.Recipient{ID: 1, TelegramID: "42", Credentials: entity.Credentials{TelegramBotToken: "own"}}

	ok, err := s.Deliver(context.Background(), r, "hi", delivery.Options{})

	require.NoError(t, err)
	assert.True(t, ok)
	require.Len(t, f.configs, 2)
	assert.Equal(t, "own", f.configs[1].BotToken)
}

func TestTelegramSender_DefaultTransportAndOptions(t *testing.T) {
	f := &chatFactory{}
	s := delivery.NewTelegramSender(baseTelegram(), f.build)
	mode := "HTML"
	noPreview := true

	ok, err := s.Deliver(context.Background(), &entity.Recipient{ID: 1, TelegramID: "42"}, "hi",
		delivery.Options{ParseMode: &mode, DisableLinkPreview: &noPreview})

	require.NoError(t, err)
	assert.True(t, ok)
	require.Len(t, f.transports, 1)
	calls := f.transports[0].Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "42", calls[0].ChatID)
	assert.Equal(t, "hi", calls[0].Text)
	require.NotNil(t, calls[0].ParseMode)
	assert.Equal(t, "HTML", *calls[0].ParseMode)
	require.NotNil(t, calls[0].DisableWebPagePreview)
	assert.True(t, *calls[0].DisableWebPagePreview)
}

func TestTelegramSender_OverrideToken(t *testing.T) {
	f := &chatFactory{}
	s := delivery.NewTelegramSender(baseTelegram(), f.build)
	r := &entity.Recipient{ID: 1, TelegramID: "42", Credentials: entity.Credentials{TelegramBotToken: "other"}}

	_, err := s.Deliver(context.Background(), r, "hi", delivery.Options{})
	require.NoError(t, err)

	require.Len(t, f.configs, 2)
	assert.Equal(t, "base-token", f.configs[0].BotToken)
	assert.Equal(t, "other", f.configs[1].BotToken)
	assert.Empty(t, f.transports[0].Calls())
}

func TestTelegramSender_TransportFailure(t *testing.T) {
	failing := &failingChat{}
	s := delivery.NewTelegramSender(baseTelegram(), func(config.TelegramConfig) transport.ChatTransport { return failing })

	ok, err := s.Deliver(context.Background(), &entity.Recipient{ID: 1, TelegramID: "42"}, "hi", delivery.Options{})

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, failing.calls)
}

/* ─────────────────────────── sms ─────────────────────────── */

func TestSMSSender(t *testing.T) {
	tr := &transport.DummySMSTransport{}
	s := delivery.NewSMSSender(tr)

	ok, err := s.Deliver(context.Background(), &entity.Recipient{ID: 1, Email: "u@example.com"}, "hi", delivery.Options{})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, tr.Calls())

	ok, err = s.Deliver(context.Background(), &entity.Recipient{ID: 1, Phone: "+15550001"}, "hi", delivery.Options{})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []transport.SMSMessage{{Phone: "+15550001", Text: "hi"}}, tr.Calls())
}

/* ─────────────────────────── default chain ─────────────────────────── */

func TestDefaultSenders(t *testing.T) {
	cfg := config.DefaultChannelsConfig()

	chain := delivery.NewChain(delivery.DefaultSenders(cfg, delivery.DummyTransports())...)
	assert.Equal(t, []entity.Channel{entity.ChannelEmail, entity.ChannelTelegram}, chain.Channels())

	cfg.SMS.Enabled = true
	chain = delivery.NewChain(delivery.DefaultSenders(cfg, delivery.DummyTransports())...)
	assert.Equal(t,
		[]entity.Channel{entity.ChannelEmail, entity.ChannelSMS, entity.ChannelTelegram},
		chain.Channels())
}

// A recipient with only a Telegram id, default email credentials, and a base
// bot token is delivered over Telegram after email is skipped.
func TestDefaultChain_TelegramOnlyRecipient(t *testing.T) {
	cfg := config.DefaultChannelsConfig()
	cfg.Transport = config.TransportDummy
	cfg.Telegram.BotToken = "base-token"

	ch, ok := delivery.NewDefaultChain(cfg).TryDeliver(context.Background(),
		&entity.Recipient{ID: 3, TelegramID: "42"}, "hello")

	require.True(t, ok)
	assert.Equal(t, entity.ChannelTelegram, ch)
}

func TestDefaultChain_NoChannels(t *testing.T) {
	cfg := config.DefaultChannelsConfig()
	cfg.Telegram.BotToken = "base-token"
	f := &emailFactory{}
	c := &chatFactory{}
	chain := delivery.NewChain(delivery.DefaultSenders(cfg, delivery.Transports{Email: f.build, Chat: c.build})...)

	_, ok := chain.TryDeliver(context.Background(), &entity.Recipient{ID: 4}, "hello")

	assert.False(t, ok)
	assert.Empty(t, f.transports[0].Calls())
	assert.Empty(t, c.transports[0].Calls())
}
