// pantry/email/email.go
// Package email delivers outbound messages through a pluggable Dispatcher.
// Implementations exist for SMTP (wneessen/go-mail), Postmark, Resend,
// Amazon SES (aws-sdk-go-v2 sesv2) and a log-only sink for development.
package email

import (
	"context"
	"errors"
)

// Message is one outbound email.
type Message struct {
	To      string
	ReplyTo string // optional
	Subject string
	Text    string
	HTML    string
}

// Dispatcher sends one Message. A call either delivers the message or
// returns an error; it never retries.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg Message) error
}

// DispatcherFunc adapts an ordinary function to Dispatcher.
type DispatcherFunc func(ctx context.Context, msg Message) error

func (f DispatcherFunc) Dispatch(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}

var (
	ErrNoRecipient = errors.New("email: no recipient specified")
	ErrEmptyBody   = errors.New("email: message body is empty")
)

func (m Message) check() error {
	if m.To == "" {
		return ErrNoRecipient
	}
	if m.Text == "" && m.HTML == "" {
		return ErrEmptyBody
	}
	return nil
}
