package entity

// Channel identifies one communication medium. The same value is used as a
// sender identity and as the persisted delivery_method of a notification.
type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelSMS      Channel = "sms"
	ChannelTelegram Channel = "telegram"
)

// Valid reports whether c is one of the known channels.
func (c Channel) Valid() bool {
	switch c {
	case ChannelEmail, ChannelSMS, ChannelTelegram:
		return true
	default:
		return false
	}
}

func (c Channel) String() string {
	return string(c)
}
