// app/backends.go
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dalemusser/formrelay/config"
	"github.com/dalemusser/formrelay/pantry/email"
	"github.com/dalemusser/formrelay/pantry/health"
	"github.com/dalemusser/formrelay/pantry/ratelimit"
)

// Backends are the process-wide collaborators built from config.
type Backends struct {
	Dispatcher email.Dispatcher
	Limiter    ratelimit.Store
	Checks     map[string]health.Check

	closers []func() error
}

// NewBackends builds the mail dispatcher and the rate limit store. A
// Redis store is pinged once so a bad address fails startup.
func NewBackends(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Backends, error) {
	d, err := NewDispatcher(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	b := &Backends{Dispatcher: d, Checks: map[string]health.Check{}}

	switch cfg.RateLimit.Store {
	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RateLimit.RedisAddr,
			Password: cfg.RateLimit.RedisPassword,
			DB:       cfg.RateLimit.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis ping %s: %w", cfg.RateLimit.RedisAddr, err)
		}
		b.Limiter = ratelimit.NewRedis(client, Name+":ratelimit", cfg.RateLimit.Requests, cfg.RateLimit.Window)
		b.Checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		b.closers = append(b.closers, client.Close)
		logger.Info("rate limit store: redis", zap.String("addr", cfg.RateLimit.RedisAddr))
	default:
		b.Limiter = ratelimit.NewMemory(cfg.RateLimit.Requests, cfg.RateLimit.Window)
		logger.Info("rate limit store: memory")
	}
	return b, nil
}

// Close releases connections held by the backends.
func (b *Backends) Close() error {
	var errs []error
	for _, c := range b.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// NewDispatcher returns the mail dispatcher named by mail_provider.
func NewDispatcher(ctx context.Context, cfg *config.Config, logger *zap.Logger) (email.Dispatcher, error) {
	m := cfg.Mail
	switch m.Provider {
	case config.ProviderSMTP:
		return email.NewSMTP(email.SMTPConfig{
			Host:        m.SMTPHost,
			Port:        m.SMTPPort,
			Username:    m.SMTPUsername,
			Password:    m.SMTPPassword,
			FromAddress: m.From,
			FromName:    m.FromName,
			UseSSL:      m.SMTPUseSSL,
			Timeout:     m.SMTPTimeout,
		}), nil
	case config.ProviderPostmark:
		return email.NewPostmark(email.PostmarkConfig{
			ServerToken:  m.PostmarkServerToken,
			AccountToken: m.PostmarkAccountToken,
			From:         m.From,
		})
	case config.ProviderResend:
		return email.NewResend(m.ResendAPIKey, m.From)
	case config.ProviderSES:
		return email.NewSES(ctx, email.SESConfig{
			Region:          m.SESRegion,
			AccessKeyID:     m.SESAccessKeyID,
			SecretAccessKey: m.SESSecretAccessKey,
			Endpoint:        m.SESEndpoint,
			FromAddress:     m.From,
			FromName:        m.FromName,
		})
	case config.ProviderLog:
		logger.Warn("mail_provider=log: submissions are logged, not sent")
		return email.NewLog(logger), nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", m.Provider)
	}
}
