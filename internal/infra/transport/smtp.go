package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"notify-dispatch/internal/config"
)

const defaultSMTPTimeout = 30 * time.Second

var errNoStartTLS = errors.New("server does not advertise STARTTLS")

// SMTPTransport submits one message per call over a fresh SMTP connection.
// The whole exchange, dial included, is bounded by cfg.Timeout.
type SMTPTransport struct {
	cfg       config.SMTPConfig
	localName string
	tlsConfig *tls.Config
	dial      func(ctx context.Context, network, addr string) (net.Conn, error)
}

// NewSMTPTransport returns a transport for cfg. The config is copied; later
// changes to the caller's value have no effect.
func NewSMTPTransport(cfg config.SMTPConfig) *SMTPTransport {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultSMTPTimeout
	}
	return &SMTPTransport{
		cfg:       cfg,
		localName: "localhost",
		tlsConfig: &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12},
		dial:      (&net.Dialer{}).DialContext,
	}
}

func (t *SMTPTransport) Send(ctx context.Context, msg EmailMessage) bool {
	start := time.Now()
	if err := t.send(ctx, msg); err != nil {
		slog.Warn("smtp delivery failed",
			slog.String("host", t.cfg.Host),
			slog.Int("port", t.cfg.Port),
			slog.Duration("duration", time.Since(start)),
			slog.Any("error", err))
		return false
	}
	slog.Debug("smtp delivery accepted",
		slog.String("host", t.cfg.Host),
		slog.Duration("duration", time.Since(start)))
	return true
}

func (t *SMTPTransport) send(ctx context.Context, msg EmailMessage) error {
	if msg.To == "" {
		return errors.New("empty recipient address")
	}

	ctx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()

	addr := net.JoinHostPort(t.cfg.Host, strconv.Itoa(t.cfg.Port))
	conn, err := t.dial(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, t.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("greeting: %w", err)
	}
	defer func() { _ = c.Close() }()

	if err := c.Hello(t.localName); err != nil {
		return fmt.Errorf("ehlo: %w", err)
	}

	if t.cfg.UseTLS {
		// Extension issues the first EHLO; StartTLS repeats it on the
		// encrypted connection.
		if ok, _ := c.Extension("STARTTLS"); !ok {
			return errNoStartTLS
		}
		if err := c.StartTLS(t.tlsConfig); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}

	if t.cfg.DefaultUser != "" {
		if err := c.Auth(&loginAuth{
			username:   t.cfg.DefaultUser,
			password:   t.cfg.DefaultPassword,
			host:       t.cfg.Host,
			requireTLS: t.cfg.UseTLS,
		}); err != nil {
			return fmt.Errorf("auth: %w", err)
		}
	}

	if err := c.Mail(msg.From); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := c.Rcpt(msg.To); err != nil {
		return fmt.Errorf("rcpt to: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write(buildMessage(msg)); err != nil {
		_ = w.Close()
		return fmt.Errorf("write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("end data: %w", err)
	}
	return c.Quit()
}

// buildMessage renders headers and a single-part body with CRLF line endings.
func buildMessage(msg EmailMessage) []byte {
	contentType := "text/plain"
	if msg.HTML {
		contentType = "text/html"
	}

	var b bytes.Buffer
	writeHeader(&b, "Subject", mime.QEncoding.Encode("utf-8", headerValue(msg.Subject)))
	writeHeader(&b, "From", headerValue(msg.From))
	writeHeader(&b, "To", headerValue(msg.To))
	writeHeader(&b, "MIME-Version", "1.0")
	writeHeader(&b, "Content-Type", contentType+`; charset="utf-8"`)
	writeHeader(&b, "Content-Transfer-Encoding", "8bit")
	b.WriteString("\r\n")

	body := strings.ReplaceAll(msg.Body, "\r\n", "\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	b.WriteString("\r\n")
	return b.Bytes()
}

func writeHeader(b *bytes.Buffer, key, value string) {
	b.WriteString(key)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteString("\r\n")
}

// headerValue drops CR and LF so a value can never start a new header.
func headerValue(v string) string {
	return strings.NewReplacer("\r", "", "\n", "").Replace(v)
}

// loginAuth implements the AUTH LOGIN mechanism, which net/smtp does not
// ship. With requireTLS set it refuses to send credentials over a connection
// that was not upgraded; with SMTP_USE_TLS=false the operator has opted into
// clear-text logins.
type loginAuth struct {
	username, password, host string
	requireTLS               bool
}

func (a *loginAuth) Start(server *smtp.ServerInfo) (string, []byte, error) {
	if a.requireTLS && !server.TLS {
		return "", nil, errors.New("unencrypted connection")
	}
	if server.Name != a.host {
		return "", nil, errors.New("wrong host name")
	}
	return "LOGIN", nil, nil
}

func (a *loginAuth) Next(fromServer []byte, more bool) ([]byte, error) {
	if !more {
		return nil, nil
	}
	prompt := strings.ToLower(strings.TrimSpace(string(fromServer)))
	switch {
	case strings.HasPrefix(prompt, "username"):
		return []byte(a.username), nil
	case strings.HasPrefix(prompt, "password"):
		return []byte(a.password), nil
	default:
		return nil, fmt.Errorf("unexpected server challenge %q", fromServer)
	}
}
