package delivery

import (
	"notify-dispatch/internal/config"
	"notify-dispatch/internal/infra/transport"
)

// Transports groups the transport constructors used to build senders.
type Transports struct {
	Email EmailTransportFactory
	Chat  ChatTransportFactory
	SMS   transport.SMSTransport
}

// LiveTransports talks to real SMTP servers and the bot API.
func LiveTransports() Transports {
	return Transports{
		Email: func(cfg config.SMTPConfig) transport.EmailTransport {
			return transport.NewSMTPTransport(cfg)
		},
		Chat: func(cfg config.TelegramConfig) transport.ChatTransport {
			return transport.NewTelegramTransport(cfg)
		},
		SMS: transport.StubSMSTransport{},
	}
}

// DummyTransports accept every message without doing any I/O. One instance
// per channel is shared by every sender built from the result.
func DummyTransports() Transports {
	email := &transport.DummyEmailTransport{}
	chat := &transport.DummyChatTransport{}
	return Transports{
		Email: func(config.SMTPConfig) transport.EmailTransport { return email },
		Chat:  func(config.TelegramConfig) transport.ChatTransport { return chat },
		SMS:   &transport.DummySMSTransport{},
	}
}

// TransportsFor picks live or dummy transports from cfg.Transport.
func TransportsFor(cfg config.ChannelsConfig) Transports {
	if cfg.Transport == config.TransportDummy {
		return DummyTransports()
	}
	return LiveTransports()
}

// DefaultSenders returns the email and Telegram senders, plus SMS when
// cfg.SMS.Enabled is set.
func DefaultSenders(cfg config.ChannelsConfig, t Transports) []Sender {
	senders := []Sender{
		NewEmailSender(cfg.SMTP, t.Email),
		NewTelegramSender(cfg.Telegram, t.Chat),
	}
	if cfg.SMS.Enabled {
		senders = append(senders, NewSMSSender(t.SMS))
	}
	return senders
}

// NewDefaultChain builds the chain a process uses for cfg.
func NewDefaultChain(cfg config.ChannelsConfig) *Chain {
	return NewChainWith(cfg, TransportsFor(cfg))
}

// NewChainWith builds the default senders over t and applies the configured
// email subject.
func NewChainWith(cfg config.ChannelsConfig, t Transports) *Chain {
	return NewChain(DefaultSenders(cfg, t)...).WithOptions(Options{Subject: cfg.SMTP.Subject})
}
