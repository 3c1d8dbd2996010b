package transport

import (
	"context"
	"log/slog"
	"sync"
)

// StubSMSTransport stands in for an SMS gateway. It accepts any message with
// a phone number, which models "accepted by carrier", not delivery.
type StubSMSTransport struct{}

func (StubSMSTransport) Send(_ context.Context, msg SMSMessage) bool {
	if msg.Phone == "" {
		return false
	}
	slog.Debug("sms accepted by stub gateway", slog.Int("length", len(msg.Text)))
	return true
}

// maxRecordedCalls bounds what a dummy transport keeps, since dummy mode can
// run in a long-lived process.
const maxRecordedCalls = 256

// recorder keeps the most recent payloads a dummy transport was asked to send.
type recorder[T any] struct {
	mu    sync.Mutex
	calls []T
}

func (r *recorder[T]) record(v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == maxRecordedCalls {
		copy(r.calls, r.calls[1:])
		r.calls[len(r.calls)-1] = v
		return
	}
	r.calls = append(r.calls, v)
}

// Calls returns a copy of the recorded payloads, oldest first.
func (r *recorder[T]) Calls() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]T, len(r.calls))
	copy(out, r.calls)
	return out
}

// DummyEmailTransport always succeeds without I/O.
type DummyEmailTransport struct{ recorder[EmailMessage] }

func (d *DummyEmailTransport) Send(_ context.Context, msg EmailMessage) bool {
	d.record(msg)
	return true
}

// DummyChatTransport always succeeds without I/O.
type DummyChatTransport struct{ recorder[ChatMessage] }

func (d *DummyChatTransport) Send(_ context.Context, msg ChatMessage) bool {
	d.record(msg)
	return true
}

// DummySMSTransport always succeeds without I/O.
type DummySMSTransport struct{ recorder[SMSMessage] }

func (d *DummySMSTransport) Send(_ context.Context, msg SMSMessage) bool {
	d.record(msg)
	return true
}
