package tasks

import (
	"context"
	"fmt"

	"gopkg.in/mail.v2"
)

// Mailer delivers rendered emails
type Mailer interface {
	Send(ctx context.Context, email *Email) error
}

// sender is the subset of *mail.Dialer used to deliver messages
type sender interface {
	DialAndSend(m ...*mail.Message) error
}

// SMTPMailer sends emails through an SMTP server
type SMTPMailer struct {
	sender sender
	from   string
}

// NewSMTPMailer creates a mailer for the given SMTP server
func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		sender: mail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// Send delivers the email as an HTML message
func (m *SMTPMailer) Send(ctx context.Context, email *Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", email.To)
	msg.SetHeader("Subject", email.Subject)
	msg.SetBody("text/html", email.Body)

	if err := m.sender.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
