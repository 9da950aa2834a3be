// ratelimit/ratelimit.go
// Package ratelimit limits how often one client may hit an endpoint.
// Counts live in memory (golang.org/x/time/rate) or, when several
// instances share the load, in Redis.
package ratelimit

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Store decides whether one more request for key is allowed.
type Store interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// KeyFunc extracts a key from an HTTP request for rate limiting.
type KeyFunc func(r *http.Request) string

// IPKeyFunc returns the client IP from RemoteAddr. Put chi's RealIP
// middleware in front when running behind a proxy.
func IPKeyFunc(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Config configures the rate limit middleware.
type Config struct {
	// Store holds the counters. Required.
	Store Store

	// KeyFunc defaults to IPKeyFunc.
	KeyFunc KeyFunc

	// Window is reported in the Retry-After header.
	Window time.Duration

	// OnLimited writes the response for a rejected request.
	// Defaults to a plain-text 429.
	OnLimited func(w http.ResponseWriter, r *http.Request)

	// Skip returns true to let a request through unchecked.
	Skip func(r *http.Request) bool

	Logger *zap.Logger
}

// Middleware returns HTTP middleware that applies cfg. A Store error lets
// the request through and is logged.
func Middleware(cfg Config) func(http.Handler) http.Handler {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = IPKeyFunc
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.OnLimited == nil {
		cfg.OnLimited = func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
		}
	}
	retryAfter := ""
	if cfg.Window > 0 {
		retryAfter = strconv.Itoa(int((cfg.Window + time.Second - 1) / time.Second))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Skip != nil && cfg.Skip(r) {
				next.ServeHTTP(w, r)
				return
			}

			key := cfg.KeyFunc(r)
			ok, err := cfg.Store.Allow(r.Context(), key)
			if err != nil {
				cfg.Logger.Warn("rate limit store failed; allowing request",
					zap.String("key", key), zap.Error(err))
				ok = true
			}
			if !ok {
				if retryAfter != "" {
					w.Header().Set("Retry-After", retryAfter)
				}
				cfg.OnLimited(w, r)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
