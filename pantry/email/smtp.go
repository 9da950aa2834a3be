// pantry/email/smtp.go
package email

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
)

// SMTPConfig holds SMTP server settings.
type SMTPConfig struct {
	// Host is the SMTP server hostname (e.g., "email-smtp.us-east-1.amazonaws.com")
	Host string

	// Port is typically 587 for STARTTLS or 465 for implicit TLS.
	Port int

	Username string
	Password string

	FromAddress string
	FromName    string // optional

	// UseSSL enables implicit TLS. Otherwise STARTTLS is required.
	UseSSL bool

	// Timeout for the whole SMTP exchange (default: 30 seconds)
	Timeout time.Duration
}

// SMTPDispatcher sends mail with a fresh SMTP connection per message.
type SMTPDispatcher struct {
	cfg SMTPConfig
}

// NewSMTP creates an SMTP dispatcher, filling in port and timeout defaults.
func NewSMTP(cfg SMTPConfig) *SMTPDispatcher {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Port == 465 {
		cfg.UseSSL = true
	}
	return &SMTPDispatcher{cfg: cfg}
}

// Dispatch implements Dispatcher.
func (s *SMTPDispatcher) Dispatch(ctx context.Context, msg Message) error {
	if err := msg.check(); err != nil {
		return err
	}

	m, err := s.build(msg)
	if err != nil {
		return err
	}

	c, err := mail.NewClient(s.cfg.Host, s.options()...)
	if err != nil {
		return fmt.Errorf("email: smtp client: %w", err)
	}
	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("email: smtp send: %w", err)
	}
	return nil
}

func (s *SMTPDispatcher) build(msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()

	if s.cfg.FromName != "" {
		if err := m.FromFormat(s.cfg.FromName, s.cfg.FromAddress); err != nil {
			return nil, fmt.Errorf("email: invalid from address: %w", err)
		}
	} else if err := m.From(s.cfg.FromAddress); err != nil {
		return nil, fmt.Errorf("email: invalid from address: %w", err)
	}

	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("email: invalid to address: %w", err)
	}
	if msg.ReplyTo != "" {
		if err := m.ReplyTo(msg.ReplyTo); err != nil {
			return nil, fmt.Errorf("email: invalid reply-to address: %w", err)
		}
	}

	m.Subject(msg.Subject)

	switch {
	case msg.Text != "" && msg.HTML != "":
		m.SetBodyString(mail.TypeTextPlain, msg.Text)
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	case msg.HTML != "":
		m.SetBodyString(mail.TypeTextHTML, msg.HTML)
	default:
		m.SetBodyString(mail.TypeTextPlain, msg.Text)
	}
	return m, nil
}

func (s *SMTPDispatcher) options() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTimeout(s.cfg.Timeout),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}
	if s.cfg.UseSSL {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	}
	return opts
}
