// Package mailer delivers notification emails. Delivery failures are the
// caller's to log; they must never fail the operation that triggered them.
package mailer

import (
	"fmt"
	"net/smtp"
	"sort"
	"strings"

	"github.com/qsights/program-admin-api/internal/config"
)

// Message is a single notification to deliver.
type Message struct {
	To      string
	Subject string
	// Template names the notification kind, e.g. "role-created".
	Template string
	Data     map[string]string
}

// Sender delivers notification messages.
type Sender interface {
	Send(msg Message) error
}

// SMTPSender delivers mail through a plain SMTP relay.
type SMTPSender struct {
	cfg config.SMTPConfig
}

// NewSMTPSender creates a Sender backed by the configured SMTP relay.
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

// Send delivers the message synchronously.
func (s *SMTPSender) Send(msg Message) error {
	if s.cfg.Host == "" {
		return fmt.Errorf("smtp host not configured")
	}

	var body strings.Builder
	fmt.Fprintf(&body, "From: %s\r\n", s.cfg.From)
	fmt.Fprintf(&body, "To: %s\r\n", msg.To)
	fmt.Fprintf(&body, "Subject: %s\r\n", msg.Subject)
	body.WriteString("\r\n")

	keys := make([]string, 0, len(msg.Data))
	for k := range msg.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&body, "%s: %s\r\n", k, msg.Data[k])
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.User != "" {
		auth = smtp.PlainAuth("", s.cfg.User, s.cfg.Pass, s.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{msg.To}, []byte(body.String())); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// Noop discards all messages. Used when mail is not configured and in tests.
type Noop struct{}

func (Noop) Send(Message) error { return nil }
