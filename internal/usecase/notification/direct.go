package notification

import (
	"context"
	"fmt"
	"log/slog"

	"notify-dispatch/internal/domain/entity"
	"notify-dispatch/internal/observability/logging"
	"notify-dispatch/internal/observability/metrics"
	"notify-dispatch/internal/usecase/delivery"
)

// EmailInput is a one-shot email send. Credentials override the configured
// SMTP login and sender address for this call.
type EmailInput struct {
	To          string
	Subject     string
	Body        string
	HTML        bool
	Credentials entity.Credentials
}

// TelegramInput is a one-shot Telegram send. ParseMode and
// DisableLinkPreview fall back to the configured defaults when nil.
type TelegramInput struct {
	ChatID             string
	Text               string
	BotToken           string
	ParseMode          *string
	DisableLinkPreview *bool
}

// SendEmail delivers one email immediately. Nothing is persisted.
func (s *Service) SendEmail(ctx context.Context, in EmailInput) error {
	r := &entity.Recipient{Email: in.To, Credentials: in.Credentials}
	if err := entity.ValidateEmail(r.Email); err != nil {
		return err
	}
	return s.sendDirect(ctx, entity.ChannelEmail, r, in.Body, delivery.Options{
		Subject: in.Subject,
		HTML:    in.HTML,
	})
}

// SendTelegram delivers one chat message immediately. Nothing is persisted.
func (s *Service) SendTelegram(ctx context.Context, in TelegramInput) error {
	if in.ChatID == "" {
		return &entity.ValidationError{Field: "chat_id", Message: "is required"}
	}
	r := &entity.Recipient{
		TelegramID:  in.ChatID,
		Credentials: entity.Credentials{TelegramBotToken: in.BotToken},
	}
	return s.sendDirect(ctx, entity.ChannelTelegram, r, in.Text, delivery.Options{
		ParseMode:          in.ParseMode,
		DisableLinkPreview: in.DisableLinkPreview,
	})
}

func (s *Service) sendDirect(ctx context.Context, ch entity.Channel, r *entity.Recipient, message string, opts delivery.Options) error {
	if message == "" {
		return &entity.ValidationError{Field: "message", Message: "cannot be empty"}
	}
	sender := s.sender(ch)
	if sender == nil {
		return fmt.Errorf("%s: %w", ch, ErrChannelUnavailable)
	}

	ok, err := sender.Deliver(ctx, r, message, opts)
	metrics.RecordDirectSend(ch.String(), ok && err == nil)
	if err != nil {
		return fmt.Errorf("send %s: %w", ch, err)
	}
	if !ok {
		logging.FromContext(ctx).Warn("direct send failed", slog.String("channel", ch.String()))
		return fmt.Errorf("%s: %w", ch, ErrNotDelivered)
	}
	return nil
}

func (s *Service) sender(ch entity.Channel) delivery.Sender {
	if s.Chain == nil {
		return nil
	}
	for _, snd := range s.Chain.Senders() {
		if snd.Channel() == ch {
			return snd
		}
	}
	return nil
}
