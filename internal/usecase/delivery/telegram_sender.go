package delivery

import (
	"context"

	"notify-dispatch/internal/config"
	"notify-dispatch/internal/domain/entity"
	"notify-dispatch/internal/infra/transport"
)

// ChatTransportFactory builds a bot API transport for a configuration.
type ChatTransportFactory func(cfg config.TelegramConfig) transport.ChatTransport

// TelegramSender delivers through the Telegram bot API.
type TelegramSender struct {
	base      config.TelegramConfig
	transport transport.ChatTransport
	factory   ChatTransportFactory
}

func NewTelegramSender(base config.TelegramConfig, factory ChatTransportFactory) *TelegramSender {
	return &TelegramSender{
		base:      base,
		transport: factory(base),
		factory:   factory,
	}
}

func (s *TelegramSender) Channel() entity.Channel { return entity.ChannelTelegram }
func (s *TelegramSender) Priority() int           { return PriorityTelegram }

func (s *TelegramSender) Deliver(ctx context.Context, r *entity.Recipient, message string, opts Options) (bool, error) {
	if r == nil || r.TelegramID == "" {
		return false, nil
	}

	token := r.Credentials.TelegramBotToken
	if token == "" {
		token = s.base.BotToken
	}
	if token == "" {
		return false, transport.ErrMissingBotToken
	}

	tr := s.transport
	if token != s.base.BotToken {
		cfg := s.base
		cfg.BotToken = token
		tr = s.factory(cfg)
	}

	return tr.Send(ctx, transport.ChatMessage{
		ChatID:                r.TelegramID,
		Text:                  message,
		ParseMode:             opts.ParseMode,
		DisableWebPagePreview: opts.DisableLinkPreview,
	}), nil
}
