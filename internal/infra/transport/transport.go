// Package transport holds the wire clients for each delivery channel.
//
// A transport performs exactly one network call for fully resolved payload
// data. Every failure (dial error, timeout, protocol rejection, non-success
// API response) is logged and reported as false; callers never see an error.
package transport

import "context"

// EmailMessage is a single-part email ready for submission.
type EmailMessage struct {
	From    string
	To      string
	Subject string
	Body    string
	HTML    bool
}

// ChatMessage is a bot API sendMessage call. Nil option fields fall back to
// the transport defaults.
type ChatMessage struct {
	ChatID                string
	Text                  string
	ParseMode             *string
	DisableWebPagePreview *bool
}

// SMSMessage is a text message for a phone number.
type SMSMessage struct {
	Phone string
	Text  string
}

type EmailTransport interface {
	Send(ctx context.Context, msg EmailMessage) bool
}

type ChatTransport interface {
	Send(ctx context.Context, msg ChatMessage) bool
}

type SMSTransport interface {
	Send(ctx context.Context, msg SMSMessage) bool
}
