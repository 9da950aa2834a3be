// app/handler.go
package app

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/dalemusser/formrelay/config"
	"github.com/dalemusser/formrelay/internal/captcha"
	"github.com/dalemusser/formrelay/internal/relay"
	"github.com/dalemusser/formrelay/internal/relay/views"
	"github.com/dalemusser/formrelay/metrics"
	pe "github.com/dalemusser/formrelay/pantry/errors"
	"github.com/dalemusser/formrelay/pantry/email"
	"github.com/dalemusser/formrelay/pantry/health"
	"github.com/dalemusser/formrelay/pantry/ratelimit"
	"github.com/dalemusser/formrelay/pantry/templates"
	"github.com/dalemusser/formrelay/pantry/version"
	"github.com/dalemusser/formrelay/router"
)

// BuildHandler assembles the router with health, version, metrics and
// relay routes.
func BuildHandler(cfg *config.Config, logger *zap.Logger, b *Backends) (http.Handler, error) {
	engine := templates.New(logger)
	if err := engine.Boot(views.Layout, views.Pages); err != nil {
		return nil, err
	}
	rs := pe.NewResponder(engine, logger)

	onPanic := func(w http.ResponseWriter, r *http.Request) {
		rs.Respond(w, r, pe.Internal(""))
	}
	r := router.New(cfg, logger, onPanic)

	health.Mount(r, b.Checks, logger)
	version.Mount(r)
	r.Handle("/metrics", metrics.Handler())

	deps := relay.Deps{
		Dispatcher: b.Dispatcher,
		Template:   email.NewSubmissionTemplate(siteName(cfg), cfg.Relay.Subject),
		Responder:  rs,
		Views:      engine,
		Logger:     logger,
	}
	if cfg.Captcha.Required {
		deps.Captcha = captcha.NewRecaptcha(cfg.Captcha.Secret)
	}

	relay.Mount(r, deps, relay.Options{
		DefaultTo:            cfg.Relay.DefaultTo,
		AllowPathDestination: cfg.Relay.AllowPathDestination,
		RateLimit: ratelimit.Middleware(ratelimit.Config{
			Store:     b.Limiter,
			Window:    cfg.RateLimit.Window,
			OnLimited: relay.OnRateLimited(rs),
			Logger:    logger,
		}),
	})

	return r, nil
}

// siteName is quoted in relayed mail bodies.
func siteName(cfg *config.Config) string {
	if cfg.Relay.SiteURL != "" {
		return cfg.Relay.SiteURL
	}
	return BaseURL(cfg)
}
