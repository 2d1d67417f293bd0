// Package mailer delivers contact-form messages over SMTP, off the
// request-handling path.
package mailer

import (
	"context"
	"fmt"

	"quill/internal/config"

	"github.com/wneessen/go-mail"
)

// Message is a contact-form submission to be delivered to the blog owner.
type Message struct {
	Name  string
	Email string
	Body  string
}

// Sender delivers a single message. Implementations must be safe for use
// from the dispatcher's worker goroutine.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender delivers messages through an SMTP relay using go-mail.
type SMTPSender struct {
	client *mail.Client
	from   string
	to     string
}

// NewSMTPSender builds a Sender from the mail configuration.
func NewSMTPSender(cfg *config.Config) (*SMTPSender, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.SMTPPort),
		mail.WithTLSPortPolicy(mail.TLSMandatory),
	}
	if cfg.SMTPUsername != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.SMTPUsername),
			mail.WithPassword(cfg.SMTPPassword),
		)
	}

	client, err := mail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}

	return &SMTPSender{
		client: client,
		from:   cfg.MailFrom,
		to:     cfg.MailTo,
	}, nil
}

// Send delivers one contact message. It blocks until the SMTP exchange
// completes or ctx is done.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m := mail.NewMsg()
	if err := m.From(s.from); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := m.To(s.to); err != nil {
		return fmt.Errorf("mail to: %w", err)
	}
	m.Subject("Message from Blog")
	m.SetBodyString(mail.TypeTextPlain,
		fmt.Sprintf("Name: %s\nEmail: %s\nMessage: %s\n", msg.Name, msg.Email, msg.Body))

	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
