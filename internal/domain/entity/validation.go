package entity

import (
	"fmt"
	"net/mail"
	"strings"
)

const (
	maxEmailLength      = 254
	maxPhoneLength      = 12
	maxTelegramIDLength = 50
	maxMessageLength    = 4096
)

// ValidateEmail checks that addr is a single bare mailbox address.
func ValidateEmail(addr string) error {
	if len(addr) > maxEmailLength {
		return &ValidationError{
			Field:   "email",
			Message: fmt.Sprintf("must not exceed %d characters", maxEmailLength),
		}
	}
	parsed, err := mail.ParseAddress(addr)
	if err != nil || parsed.Address != addr {
		return &ValidationError{Field: "email", Message: "invalid email address"}
	}
	return nil
}

// ValidatePhone accepts digits with an optional leading '+'.
// The length limit matches the phone column width.
func ValidatePhone(phone string) error {
	if len(phone) > maxPhoneLength {
		return &ValidationError{
			Field:   "phone",
			Message: fmt.Sprintf("must not exceed %d characters", maxPhoneLength),
		}
	}
	digits := strings.TrimPrefix(phone, "+")
	if digits == "" {
		return &ValidationError{Field: "phone", Message: "invalid phone number"}
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return &ValidationError{Field: "phone", Message: "invalid phone number"}
		}
	}
	return nil
}
