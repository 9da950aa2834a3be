// pantry/email/ses.go
package email

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// SESAPI is the part of *sesv2.Client the dispatcher calls.
type SESAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESConfig configures the Amazon SES (v2 API) dispatcher.
type SESConfig struct {
	// Region is required (e.g., "us-east-1").
	Region string

	// AccessKeyID and SecretAccessKey are optional. Without them the
	// default AWS credential chain applies (env, shared files, IAM role).
	AccessKeyID     string
	SecretAccessKey string

	// Endpoint overrides the service URL, for LocalStack and tests.
	Endpoint string

	FromAddress string
	FromName    string // optional
}

// SESDispatcher sends mail with the SES SendEmail API.
type SESDispatcher struct {
	api  SESAPI
	from string
}

// NewSES loads AWS configuration and returns an SES dispatcher.
func NewSES(ctx context.Context, cfg SESConfig) (*SESDispatcher, error) {
	if cfg.Region == "" {
		return nil, fmt.Errorf("%w: ses region is required", ErrInvalidConfig)
	}
	if cfg.FromAddress == "" {
		return nil, fmt.Errorf("%w: from address is required", ErrInvalidConfig)
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("email: load aws config: %w", err)
	}

	client := sesv2.NewFromConfig(awsCfg, func(o *sesv2.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewSESWithClient(client, cfg.FromAddress, cfg.FromName), nil
}

// NewSESWithClient wraps an existing SES client.
func NewSESWithClient(api SESAPI, fromAddress, fromName string) *SESDispatcher {
	from := fromAddress
	if fromName != "" {
		from = (&mail.Address{Name: fromName, Address: fromAddress}).String()
	}
	return &SESDispatcher{api: api, from: from}
}

// Dispatch implements Dispatcher.
func (s *SESDispatcher) Dispatch(ctx context.Context, msg Message) error {
	if err := msg.check(); err != nil {
		return err
	}

	body := &types.Body{}
	if msg.Text != "" {
		body.Text = utf8Content(msg.Text)
	}
	if msg.HTML != "" {
		body.Html = utf8Content(msg.HTML)
	}

	in := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.from),
		Destination:      &types.Destination{ToAddresses: []string{msg.To}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: utf8Content(msg.Subject),
				Body:    body,
			},
		},
	}
	if msg.ReplyTo != "" {
		in.ReplyToAddresses = []string{msg.ReplyTo}
	}

	if _, err := s.api.SendEmail(ctx, in); err != nil {
		return fmt.Errorf("email: ses send: %w", err)
	}
	return nil
}

func utf8Content(s string) *types.Content {
	return &types.Content{Data: aws.String(s), Charset: aws.String("UTF-8")}
}
