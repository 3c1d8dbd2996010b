package notification

import "errors"

var (
	ErrRecipientNotFound    = errors.New("recipient not found")
	ErrNotificationNotFound = errors.New("notification not found")

	// ErrAlreadyDelivered is returned by Retry for a delivered notification.
	ErrAlreadyDelivered = errors.New("notification already delivered")

	// ErrChannelUnavailable means no sender is registered for the channel.
	ErrChannelUnavailable = errors.New("channel unavailable")

	// ErrNotDelivered means a one-shot send was not accepted by the transport.
	ErrNotDelivered = errors.New("message not delivered")
)
