package delivery

import (
	"context"

	"notify-dispatch/internal/domain/entity"
	"notify-dispatch/internal/infra/transport"
)

// SMSSender is the seam for a real SMS gateway. It is not part of the default
// chain; enable it with SMS_ENABLED.
type SMSSender struct {
	transport transport.SMSTransport
}

func NewSMSSender(tr transport.SMSTransport) *SMSSender {
	return &SMSSender{transport: tr}
}

func (s *SMSSender) Channel() entity.Channel { return entity.ChannelSMS }
func (s *SMSSender) Priority() int           { return PrioritySMS }

func (s *SMSSender) Deliver(ctx context.Context, r *entity.Recipient, message string, _ Options) (bool, error) {
	if r == nil || r.Phone == "" {
		return false, nil
	}
	return s.transport.Send(ctx, transport.SMSMessage{Phone: r.Phone, Text: message}), nil
}
