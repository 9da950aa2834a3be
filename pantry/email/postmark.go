// pantry/email/postmark.go
package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrz1836/postmark"
)

// ErrInvalidConfig is returned by constructors given incomplete settings.
var ErrInvalidConfig = errors.New("email: invalid configuration")

// PostmarkConfig holds Postmark API credentials.
type PostmarkConfig struct {
	ServerToken  string
	AccountToken string // optional; only needed for account-level API calls
	From         string
	// BaseURL overrides the API endpoint; empty means Postmark's default.
	BaseURL string
}

// PostmarkDispatcher sends mail through Postmark's transactional API.
type PostmarkDispatcher struct {
	client *postmark.Client
	from   string
}

// NewPostmark validates cfg and returns a Postmark dispatcher.
func NewPostmark(cfg PostmarkConfig) (*PostmarkDispatcher, error) {
	if cfg.ServerToken == "" {
		return nil, fmt.Errorf("%w: postmark server token is required", ErrInvalidConfig)
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("%w: from address is required", ErrInvalidConfig)
	}
	client := postmark.NewClient(cfg.ServerToken, cfg.AccountToken)
	if cfg.BaseURL != "" {
		client.BaseURL = cfg.BaseURL
	}
	return &PostmarkDispatcher{client: client, from: cfg.From}, nil
}

// Dispatch implements Dispatcher.
func (p *PostmarkDispatcher) Dispatch(ctx context.Context, msg Message) error {
	if err := msg.check(); err != nil {
		return err
	}

	resp, err := p.client.SendEmail(ctx, postmark.Email{
		From:     p.from,
		To:       msg.To,
		ReplyTo:  msg.ReplyTo,
		Subject:  msg.Subject,
		Tag:      "form-submission",
		TextBody: msg.Text,
		HTMLBody: msg.HTML,
	})
	if err != nil {
		return fmt.Errorf("email: postmark send: %w", err)
	}
	if resp.ErrorCode > 0 {
		return fmt.Errorf("email: postmark error %d: %s", resp.ErrorCode, resp.Message)
	}
	return nil
}
