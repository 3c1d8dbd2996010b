// Package delivery turns a Recipient and a message into at most one
// successful channel delivery.
//
// A Sender resolves the address and credentials for one channel and hands a
// payload to a transport. A Chain tries its senders in priority order and
// stops at the first success.
package delivery

import (
	"context"

	"notify-dispatch/internal/domain/entity"
)

// Default priorities. Lower values are tried first.
const (
	PriorityEmail    = 10
	PrioritySMS      = 20
	PriorityTelegram = 30
)

// DefaultSubject is used for email when Options.Subject is empty.
const DefaultSubject = "Notification"

// Sender delivers a message over one channel.
//
// Contract:
//   - A recipient without an address for the channel yields (false, nil)
//     and no transport is invoked.
//   - A transport failure yields (false, nil).
//   - A non-nil error reports an unexpected fault such as misconfiguration.
//     The chain logs it and moves on to the next sender.
//
// Implementations are shared across goroutines and must not keep per-call
// state on the receiver.
type Sender interface {
	// Channel identifies the sender and is recorded as the delivery method.
	Channel() entity.Channel

	// Priority orders senders inside a chain. It never changes.
	Priority() int

	// Deliver sends message to the recipient's address for this channel.
	// Credential overrides carried by the recipient apply to this call only.
	Deliver(ctx context.Context, r *entity.Recipient, message string, opts Options) (bool, error)
}

// Options are per-call channel options. Zero values mean "use the default".
type Options struct {
	// Subject of an email. Defaults to DefaultSubject.
	Subject string
	// HTML sends the email body as text/html.
	HTML bool
	// ParseMode overrides the Telegram parse mode. An empty string disables it.
	ParseMode *string
	// DisableLinkPreview overrides the Telegram link preview flag.
	DisableLinkPreview *bool
}

func (o Options) subject() string {
	if o.Subject == "" {
		return DefaultSubject
	}
	return o.Subject
}
