package delivery

import (
	"context"

	"notify-dispatch/internal/config"
	"notify-dispatch/internal/domain/entity"
	"notify-dispatch/internal/infra/transport"
)

// EmailTransportFactory builds an email transport for an SMTP configuration.
type EmailTransportFactory func(cfg config.SMTPConfig) transport.EmailTransport

// EmailSender delivers over SMTP.
type EmailSender struct {
	base      config.SMTPConfig
	transport transport.EmailTransport
	factory   EmailTransportFactory
}

// NewEmailSender builds the default transport from base once. The factory is
// called again only for recipients that carry their own SMTP login.
func NewEmailSender(base config.SMTPConfig, factory EmailTransportFactory) *EmailSender {
	return &EmailSender{
		base:      base,
		transport: factory(base),
		factory:   factory,
	}
}

func (s *EmailSender) Channel() entity.Channel { return entity.ChannelEmail }
func (s *EmailSender) Priority() int           { return PriorityEmail }

func (s *EmailSender) Deliver(ctx context.Context, r *entity.Recipient, message string, opts Options) (bool, error) {
	if r == nil || r.Email == "" {
		return false, nil
	}

	msg := transport.EmailMessage{
		From:    s.fromAddress(r),
		To:      r.Email,
		Subject: opts.subject(),
		Body:    message,
		HTML:    opts.HTML,
	}
	return s.transportFor(r).Send(ctx, msg), nil
}

// fromAddress prefers the recipient's own sender address, then the default
// SMTP login, then the configured fallback.
func (s *EmailSender) fromAddress(r *entity.Recipient) string {
	switch {
	case r.Credentials.FromEmail != "":
		return r.Credentials.FromEmail
	case s.base.DefaultUser != "":
		return s.base.DefaultUser
	case s.base.DefaultFromEmail != "":
		return s.base.DefaultFromEmail
	default:
		return config.DefaultFromEmail
	}
}

// transportFor returns a one-off transport when the recipient's login differs
// from the default one. s.base is copied, never modified.
func (s *EmailSender) transportFor(r *entity.Recipient) transport.EmailTransport {
	user := r.Credentials.SMTPUser
	if user == "" {
		user = s.base.DefaultUser
	}
	password := r.Credentials.SMTPPassword
	if password == "" {
		password = s.base.DefaultPassword
	}
	if user == s.base.DefaultUser && password == s.base.DefaultPassword {
		return s.transport
	}

	cfg := s.base
	cfg.DefaultUser = user
	cfg.DefaultPassword = password
	return s.factory(cfg)
}
