package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/kidoralabs/kidora-backend/pkg/config"
	"github.com/kidoralabs/kidora-backend/pkg/logger"
)

// Mailer delivers a single message. Callers treat delivery as best
// effort; failures are logged, never surfaced to the request path.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// New selects the backend from configuration. Anything other than
// "smtp" falls back to the console mailer.
func New(cfg config.MailerConfig, logg *logger.Logger) Mailer {
	if strings.EqualFold(cfg.Mode, "smtp") && cfg.SMTPHost != "" {
		return &smtpMailer{cfg: cfg}
	}
	return &consoleMailer{from: cfg.From, logg: logg}
}

type consoleMailer struct {
	from string
	logg *logger.Logger
}

func (m *consoleMailer) Send(ctx context.Context, to, subject, body string) error {
	if m.logg != nil {
		ctx = m.logg.WithFields(ctx, map[string]any{
			"mail_to":      to,
			"mail_subject": subject,
		})
		m.logg.Info(ctx, "mail (console): "+body)
	}
	return nil
}

type smtpMailer struct {
	cfg config.MailerConfig
}

func (m *smtpMailer) Send(ctx context.Context, to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPHost, m.cfg.SMTPPort)

	var auth smtp.Auth
	if m.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", m.cfg.SMTPUser, m.cfg.SMTPPass, m.cfg.SMTPHost)
	}

	msg := strings.Join([]string{
		"From: " + m.cfg.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"utf-8\"",
		"",
		body,
	}, "\r\n")

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("sending mail to %s: %w", to, err)
	}
	return nil
}
