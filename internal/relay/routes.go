// internal/relay/routes.go
package relay

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dalemusser/formrelay/internal/relay/views"
	"github.com/dalemusser/formrelay/metrics"
	pe "github.com/dalemusser/formrelay/pantry/errors"
)

// Options selects which relay routes are mounted.
type Options struct {
	// DefaultTo is the destination for POST /. Empty keeps the route but
	// every submission to it fails with a missing-destination error.
	DefaultTo string

	// AllowPathDestination mounts POST /{destinationEmail}.
	AllowPathDestination bool

	// RateLimit, when set, wraps the submission routes.
	RateLimit func(http.Handler) http.Handler
}

// Mount registers the submission routes and the static assets the pages
// link to.
func Mount(r chi.Router, deps Deps, opts Options) {
	r.Group(func(r chi.Router) {
		if opts.RateLimit != nil {
			r.Use(opts.RateLimit)
		}
		r.Method(http.MethodPost, "/", NewHandler(deps, FixedDestination(opts.DefaultTo)))
		if opts.AllowPathDestination {
			r.Method(http.MethodPost, "/{"+PathParam+"}", NewHandler(deps, PathDestination{}))
		}
	})

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(views.Static()))))
}

// OnRateLimited answers a rejected submission the same way as any other
// failure. It fits ratelimit.Config.OnLimited.
func OnRateLimited(rs *pe.Responder) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		metrics.Submission(metrics.OutcomeRateLimited)
		rs.Respond(w, r, pe.TooManyRequests(MsgRateLimited))
	}
}
