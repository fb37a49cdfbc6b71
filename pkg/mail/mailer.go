package mail

import (
	"context"
	"errors"
	"fmt"

	gomail "gopkg.in/gomail.v2"

	"github.com/avalenz-dev/storefront-backend/pkg/config"
	"github.com/avalenz-dev/storefront-backend/pkg/logger"
)

type sender interface {
	DialAndSend(...*gomail.Message) error
}

// Mailer delivers contact submissions to the support inbox over SMTP.
type Mailer struct {
	dialer sender
	from   string
	dest   string
	logg   *logger.Logger
}

// NewMailer builds an SMTP-backed mailer from config.
func NewMailer(cfg config.SMTPConfig, logg *logger.Logger) (*Mailer, error) {
	if !cfg.Enabled() {
		return nil, errors.New("smtp host, from, and contact destination are required")
	}

	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return &Mailer{
		dialer: dialer,
		from:   cfg.From,
		dest:   cfg.ContactDest,
		logg:   logg,
	}, nil
}

// SendContactMessage relays one contact form submission.
func (m *Mailer) SendContactMessage(ctx context.Context, name, replyTo, message string) error {
	if m == nil || m.dialer == nil {
		return errors.New("mailer not initialized")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", m.dest)
	msg.SetHeader("Reply-To", replyTo)
	msg.SetHeader("Subject", fmt.Sprintf("Contact form message from %s", name))
	msg.SetBody("text/plain", fmt.Sprintf("From: %s <%s>\n\n%s", name, replyTo, message))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send contact mail: %w", err)
	}

	if m.logg != nil {
		logCtx := m.logg.WithField(ctx, "reply_to", replyTo)
		m.logg.Info(logCtx, "contact message relayed")
	}
	return nil
}
