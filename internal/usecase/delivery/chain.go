package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"notify-dispatch/internal/domain/entity"
	"notify-dispatch/internal/observability/logging"
)

// Chain tries its senders in ascending priority and stops at the first one
// that reports success.
//
// A Chain is immutable after construction and safe for concurrent use.
type Chain struct {
	senders []Sender
	opts    Options
}

// NewChain orders senders by priority. Senders with equal priority keep the
// order they were given in.
func NewChain(senders ...Sender) *Chain {
	ordered := make([]Sender, 0, len(senders))
	for _, s := range senders {
		if s != nil {
			ordered = append(ordered, s)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority() < ordered[j].Priority()
	})
	return &Chain{senders: ordered}
}

// WithOptions returns a copy of the chain that passes opts to every sender.
func (c *Chain) WithOptions(opts Options) *Chain {
	return &Chain{senders: c.senders, opts: opts}
}

// Register returns a new chain with s added. The receiver is unchanged.
func (c *Chain) Register(s Sender) *Chain {
	senders := make([]Sender, 0, len(c.senders)+1)
	senders = append(senders, c.senders...)
	senders = append(senders, s)
	next := NewChain(senders...)
	next.opts = c.opts
	return next
}

// Senders returns the senders in the order they are tried.
func (c *Chain) Senders() []Sender {
	out := make([]Sender, len(c.senders))
	copy(out, c.senders)
	return out
}

// Channels returns the channel of each sender in the order they are tried.
func (c *Chain) Channels() []entity.Channel {
	out := make([]entity.Channel, len(c.senders))
	for i, s := range c.senders {
		out[i] = s.Channel()
	}
	return out
}

// TryDeliver walks the chain and returns the channel that succeeded.
// It returns ("", false) when every sender failed or the chain is empty.
// Sender errors and panics are logged and count as a failure of that sender.
func (c *Chain) TryDeliver(ctx context.Context, r *entity.Recipient, message string) (entity.Channel, bool) {
	logger := logging.WithRequestID(ctx, logging.FromContext(ctx))

	for _, s := range c.senders {
		if ok := c.try(ctx, logger, s, r, message); ok {
			return s.Channel(), true
		}
	}

	recordExhausted()
	logger.Debug("no channel delivered",
		slog.String("recipient", recipientLogID(r)),
		slog.Int("senders", len(c.senders)))
	return "", false
}

func (c *Chain) try(ctx context.Context, logger *slog.Logger, s Sender, r *entity.Recipient, message string) (ok bool) {
	channel := s.Channel().String()
	start := time.Now()

	defer func() {
		if rec := recover(); rec != nil {
			ok = false
			recordAttempt(channel, resultPanic, time.Since(start))
			logger.Error("sender panicked",
				slog.String("channel", channel),
				slog.String("recipient", recipientLogID(r)),
				slog.String("panic", fmt.Sprint(rec)))
		}
	}()

	ok, err := s.Deliver(ctx, r, message, c.opts)
	switch {
	case err != nil:
		recordAttempt(channel, resultError, time.Since(start))
		logger.Error("sender failed unexpectedly",
			slog.String("channel", channel),
			slog.String("recipient", recipientLogID(r)),
			slog.Any("error", err))
		return false
	case ok:
		recordAttempt(channel, resultSuccess, time.Since(start))
		return true
	default:
		recordAttempt(channel, resultFailure, time.Since(start))
		return false
	}
}

func recipientLogID(r *entity.Recipient) string {
	if r == nil {
		return "recipient#nil"
	}
	return r.LogID()
}
