package entity

import (
	"strings"
	"time"
)

// Notification is a message addressed to exactly one recipient together with
// its delivery bookkeeping.
//
// Attempts only ever grows. Once Delivered is true it stays true and
// DeliveryMethod names the channel that succeeded.
type Notification struct {
	ID             int64
	RecipientID    int64
	Message        string
	Delivered      bool
	DeliveryMethod *Channel
	Attempts       int
	CreatedAt      time.Time
}

// RecordAttempt applies the result of one delivery attempt.
// An empty channel means the attempt failed on every channel.
func (n *Notification) RecordAttempt(ch Channel) {
	n.Attempts++
	if ch == "" {
		return
	}
	n.Delivered = true
	method := ch
	n.DeliveryMethod = &method
}

// Method returns the delivery method, or "" when none was recorded.
func (n *Notification) Method() Channel {
	if n.DeliveryMethod == nil {
		return ""
	}
	return *n.DeliveryMethod
}

// Validate checks a notification about to be created.
func (n *Notification) Validate() error {
	n.Message = strings.TrimSpace(n.Message)
	if n.RecipientID <= 0 {
		return &ValidationError{Field: "user_id", Message: "must be positive"}
	}
	if n.Message == "" {
		return &ValidationError{Field: "message", Message: "cannot be empty"}
	}
	if len(n.Message) > maxMessageLength {
		return &ValidationError{Field: "message", Message: "too long"}
	}
	return nil
}
