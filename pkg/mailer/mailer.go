// Package mailer sends transactional email over SMTP.
package mailer

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Message is a single outgoing email.
type Message struct {
	To      string
	Subject string
	Body    string
	HTML    bool
}

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Sender abstracts gomail.Dialer so delivery can be replaced in tests.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPConfig contains options for creating an SMTPMailer.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer sends email through an SMTP relay.
type SMTPMailer struct {
	sender Sender
	from   string
}

// NewSMTPMailer creates an SMTPMailer backed by a gomail dialer.
func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	if cfg.Host == "" {
		return nil, errors.New("SMTP host cannot be empty")
	}
	if cfg.From == "" {
		return nil, errors.New("sender email address cannot be empty")
	}
	return NewSMTPMailerWithSender(gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password), cfg.From), nil
}

// NewSMTPMailerWithSender creates an SMTPMailer that delivers through sender.
func NewSMTPMailerWithSender(sender Sender, from string) *SMTPMailer {
	return &SMTPMailer{sender: sender, from: from}
}

// Send builds and delivers msg.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return errors.New("recipient email address cannot be empty")
	}
	if msg.Subject == "" {
		return errors.New("email subject cannot be empty")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	contentType := "text/plain"
	if msg.HTML {
		contentType = "text/html"
	}
	gm.SetBody(contentType, msg.Body)

	if err := m.sender.DialAndSend(gm); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// LogMailer logs messages instead of sending them. Used when SMTP is not configured.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer creates a LogMailer.
func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (l *LogMailer) Send(_ context.Context, msg Message) error {
	l.logger.Info("Mail delivery disabled, dropping message",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject))
	return nil
}
