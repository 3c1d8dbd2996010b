package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notify-dispatch/internal/domain/entity"
	"notify-dispatch/internal/usecase/delivery"
)

func TestSendEmail(t *testing.T) {
	email := &fakeSender{channel: entity.ChannelEmail, ok: true}
	svc, q := newService(t, email)

	err := svc.SendEmail(context.Background(), EmailInput{
		To:          "ann@example.com",
		Subject:     "Weekly report",
		Body:        "<b>done</b>",
		HTML:        true,
		Credentials: entity.Credentials{SMTPUser: "reports@example.com", SMTPPassword: "pw"},
	})
	require.NoError(t, err)

	require.Len(t, email.calls, 1)
	call := email.calls[0]
	assert.Equal(t, "ann@example.com", call.Recipient.Email)
	assert.Zero(t, call.Recipient.ID)
	assert.Equal(t, "reports@example.com", call.Recipient.Credentials.SMTPUser)
	assert.Equal(t, "<b>done</b>", call.Message)
	assert.Equal(t, delivery.Options{Subject: "Weekly report", HTML: true}, call.Options)
	assert.Empty(t, q.jobs)
}

func TestSendEmail_InvalidAddress(t *testing.T) {
	email := &fakeSender{channel: entity.ChannelEmail, ok: true}
	svc, _ := newService(t, email)

	err := svc.SendEmail(context.Background(), EmailInput{To: "not-an-address", Body: "hi"})
	assert.ErrorIs(t, err, entity.ErrValidationFailed)
	assert.Empty(t, email.calls)
}

func TestSendTelegram(t *testing.T) {
	chat := &fakeSender{channel: entity.ChannelTelegram, ok: true}
	svc, _ := newService(t, chat)
	mode := "HTML"

	err := svc.SendTelegram(context.Background(), TelegramInput{
		ChatID:    "555",
		Text:      "hello",
		BotToken:  "123:abc",
		ParseMode: &mode,
	})
	require.NoError(t, err)

	require.Len(t, chat.calls, 1)
	call := chat.calls[0]
	assert.Equal(t, "555", call.Recipient.TelegramID)
	assert.Equal(t, "123:abc", call.Recipient.Credentials.TelegramBotToken)
	require.NotNil(t, call.Options.ParseMode)
	assert.Equal(t, "HTML", *call.Options.ParseMode)
}

func TestSendDirect_Failures(t *testing.T) {
	tests := []struct {
		name    string
		sender  *fakeSender
		send    func(*Service) error
		wantErr error
	}{
		{
			name:   "transport rejected",
			sender: &fakeSender{channel: entity.ChannelTelegram},
			send: func(s *Service) error {
				return s.SendTelegram(context.Background(), TelegramInput{ChatID: "1", Text: "x"})
			},
			wantErr: ErrNotDelivered,
		},
		{
			name:   "sender fault",
			sender: &fakeSender{channel: entity.ChannelEmail, err: errors.New("boom")},
			send: func(s *Service) error {
				return s.SendEmail(context.Background(), EmailInput{To: "a@example.com", Body: "x"})
			},
		},
		{
			name:   "channel not registered",
			sender: &fakeSender{channel: entity.ChannelEmail, ok: true},
			send: func(s *Service) error {
				return s.SendTelegram(context.Background(), TelegramInput{ChatID: "1", Text: "x"})
			},
			wantErr: ErrChannelUnavailable,
		},
		{
			name:   "empty message",
			sender: &fakeSender{channel: entity.ChannelEmail, ok: true},
			send: func(s *Service) error {
				return s.SendEmail(context.Background(), EmailInput{To: "a@example.com"})
			},
			wantErr: entity.ErrValidationFailed,
		},
		{
			name:   "missing chat id",
			sender: &fakeSender{channel: entity.ChannelTelegram, ok: true},
			send: func(s *Service) error {
				return s.SendTelegram(context.Background(), TelegramInput{Text: "x"})
			},
			wantErr: entity.ErrValidationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newService(t, tt.sender)
			err := tt.send(svc)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
