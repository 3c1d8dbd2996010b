package entity

import (
	"fmt"
	"strings"
	"time"
)

// Recipient is an addressable entity with up to three independent contact
// channels. Any of them may be empty.
type Recipient struct {
	ID         int64
	Email      string
	Phone      string
	TelegramID string

	// Credentials holds optional per-recipient channel overrides.
	Credentials Credentials

	CreatedAt time.Time
}

// Credentials are channel credential overrides. Empty fields mean
// "use the process-wide default".
type Credentials struct {
	SMTPUser         string `json:"smtp_user,omitempty"`
	SMTPPassword     string `json:"smtp_password,omitempty"`
	FromEmail        string `json:"from_email,omitempty"`
	TelegramBotToken string `json:"telegram_bot_token,omitempty"`
}

// IsZero reports whether no override is set.
func (c Credentials) IsZero() bool {
	return c == Credentials{}
}

// Merge returns c with every non-empty field of o applied on top.
func (c Credentials) Merge(o Credentials) Credentials {
	if o.SMTPUser != "" {
		c.SMTPUser = o.SMTPUser
	}
	if o.SMTPPassword != "" {
		c.SMTPPassword = o.SMTPPassword
	}
	if o.FromEmail != "" {
		c.FromEmail = o.FromEmail
	}
	if o.TelegramBotToken != "" {
		c.TelegramBotToken = o.TelegramBotToken
	}
	return c
}

// HasAnyChannel reports whether at least one contact channel is populated.
func (r *Recipient) HasAnyChannel() bool {
	return r.Email != "" || r.Phone != "" || r.TelegramID != ""
}

// WithOverrides returns a copy of r whose credentials are overlaid with o.
// The receiver is never modified.
func (r Recipient) WithOverrides(o Credentials) Recipient {
	r.Credentials = r.Credentials.Merge(o)
	return r
}

// Address returns the recipient's address for the given channel.
func (r *Recipient) Address(ch Channel) string {
	switch ch {
	case ChannelEmail:
		return r.Email
	case ChannelSMS:
		return r.Phone
	case ChannelTelegram:
		return r.TelegramID
	default:
		return ""
	}
}

// LogID returns a short identity for log lines that never includes secrets.
func (r *Recipient) LogID() string {
	if r.ID > 0 {
		return fmt.Sprintf("recipient#%d", r.ID)
	}
	return "recipient#adhoc"
}

// Validate checks the contact fields of a recipient about to be stored.
func (r *Recipient) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.TelegramID = strings.TrimSpace(r.TelegramID)

	if !r.HasAnyChannel() {
		return &ValidationError{Field: "channels", Message: "at least one of email, phone or telegram_id is required"}
	}
	if r.Email != "" {
		if err := ValidateEmail(r.Email); err != nil {
			return err
		}
	}
	if r.Phone != "" {
		if err := ValidatePhone(r.Phone); err != nil {
			return err
		}
	}
	if len(r.TelegramID) > maxTelegramIDLength {
		return &ValidationError{
			Field:   "telegram_id",
			Message: fmt.Sprintf("must not exceed %d characters", maxTelegramIDLength),
		}
	}
	return nil
}
