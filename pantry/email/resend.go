// pantry/email/resend.go
package email

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
)

// ResendDispatcher sends mail through the Resend API.
type ResendDispatcher struct {
	client *resend.Client
	from   string
}

// NewResend returns a Resend dispatcher for the given API key and sender.
func NewResend(apiKey, from string) (*ResendDispatcher, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: resend api key is required", ErrInvalidConfig)
	}
	if from == "" {
		return nil, fmt.Errorf("%w: from address is required", ErrInvalidConfig)
	}
	return &ResendDispatcher{
		client: resend.NewClient(apiKey),
		from:   from,
	}, nil
}

// Dispatch implements Dispatcher.
func (s *ResendDispatcher) Dispatch(ctx context.Context, msg Message) error {
	if err := msg.check(); err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}
	if msg.ReplyTo != "" {
		params.ReplyTo = msg.ReplyTo
	}

	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("email: resend send: %w", err)
	}
	return nil
}
