// Package alert delivers budget alerts. Delivery is best effort: the
// expense write has already committed by the time anything here runs, and
// no failure on this path ever reaches the caller.
package alert

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// Dispatcher sends a formatted alert. Implementations must not block
// indefinitely and must treat missing configuration as a no-op.
type Dispatcher interface {
	Dispatch(ctx context.Context, subject, body string) error
}

// MailerConfig is all-or-nothing: if any field is empty the mailer is a
// documented no-op rather than a partial attempt.
type MailerConfig struct {
	Host      string
	Port      string
	Username  string
	Password  string
	Recipient string
}

// Configured reports whether every required setting is present.
func (c MailerConfig) Configured() bool {
	return c.Host != "" && c.Port != "" && c.Username != "" && c.Password != "" && c.Recipient != ""
}

// Mailer delivers alerts over SMTP with STARTTLS and plain auth. One
// attempt per alert; there is no retry.
type Mailer struct {
	cfg         MailerConfig
	dialTimeout time.Duration
}

var _ Dispatcher = (*Mailer)(nil)

func NewMailer(cfg MailerConfig) *Mailer {
	return &Mailer{cfg: cfg, dialTimeout: 10 * time.Second}
}

// Dispatch sends the alert to the configured recipient. When the mailer
// is not fully configured it logs and returns nil.
func (m *Mailer) Dispatch(ctx context.Context, subject, body string) error {
	if !m.cfg.Configured() {
		slog.InfoContext(ctx, "Alert skipped: SMTP not fully configured or no recipient",
			"subject", subject)
		return nil
	}

	addr := net.JoinHostPort(m.cfg.Host, m.cfg.Port)
	dialer := &net.Dialer{Timeout: m.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial smtp %s: %w", addr, err)
	}

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: m.cfg.Host}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}

	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}

	if err := client.Mail(m.cfg.Username); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(m.cfg.Recipient); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write([]byte(buildMessage(m.cfg.Username, m.cfg.Recipient, subject, body))); err != nil {
		w.Close()
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close message: %w", err)
	}
	if err := client.Quit(); err != nil {
		return fmt.Errorf("smtp quit: %w", err)
	}

	slog.InfoContext(ctx, "Alert email sent", "to", m.cfg.Recipient, "subject", subject)
	return nil
}

func buildMessage(from, to, subject, body string) string {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	b.WriteString("\r\n")
	return b.String()
}
