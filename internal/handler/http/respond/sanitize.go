package respond

import "regexp"

var (
	// Telegram Bot API URLs embed the token: /bot<id>:<secret>/sendMessage.
	botTokenPattern = regexp.MustCompile(`bot\d+:[A-Za-z0-9_-]+`)

	// user:password@ in DSNs and SMTP URLs.
	urlPasswordPattern = regexp.MustCompile(`://([^:/@\s]+):([^@\s]+)@`)

	// password=... in key/value DSNs.
	kvPasswordPattern = regexp.MustCompile(`(?i)(password=)[^\s&]+`)
)

// SanitizeError masks credentials that transports and drivers put in their
// error messages.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	msg = botTokenPattern.ReplaceAllString(msg, "bot****")
	msg = urlPasswordPattern.ReplaceAllString(msg, "://$1:****@")
	msg = kvPasswordPattern.ReplaceAllString(msg, "${1}****")
	return msg
}
