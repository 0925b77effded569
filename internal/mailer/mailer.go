package mailer

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/campsum/campsum-api/internal/config"
)

const verificationSubject = "Verify your Campsum account"

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer sends HTML mail through the configured SMTP relay.
type Mailer struct {
	cfg  config.SMTPConfig
	send sendFunc
}

func New(cfg config.SMTPConfig) *Mailer {
	return &Mailer{cfg: cfg, send: smtp.SendMail}
}

func (m *Mailer) Enabled() bool {
	return m != nil && m.cfg.Enabled()
}

func (m *Mailer) SendHTML(ctx context.Context, to, subject, html string) error {
	if !m.Enabled() {
		return fmt.Errorf("smtp is not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	}
	addr := net.JoinHostPort(m.cfg.Host, m.cfg.Port)
	if err := m.send(addr, auth, envelopeAddress(m.cfg.From), []string{to}, buildMessage(m.cfg.From, to, subject, html)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

func (m *Mailer) SendVerification(ctx context.Context, to, link string) error {
	return m.SendHTML(ctx, to, verificationSubject, VerificationHTML(link))
}

func VerificationHTML(link string) string {
	return fmt.Sprintf(`<h2>Welcome to Campsum!</h2>
<p>Click the link below to verify your account:</p>
<a href="%[1]s">%[1]s</a>
<p>If you didn't sign up, you can ignore this email.</p>
`, link)
}

func buildMessage(from, to, subject, html string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("Date: " + time.Now().UTC().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(html)
	return []byte(b.String())
}

// envelopeAddress pulls the bare address out of `"Name" <addr>`.
func envelopeAddress(from string) string {
	if i := strings.LastIndex(from, "<"); i >= 0 {
		if j := strings.LastIndex(from, ">"); j > i {
			return from[i+1 : j]
		}
	}
	return strings.TrimSpace(from)
}
