// middleware/security.go
package middleware

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/formrelay/config"
)

// DefaultContentSecurityPolicy fits the relay's own pages: a local
// stylesheet, no scripts, links back to any https origin.
const DefaultContentSecurityPolicy = "default-src 'self'; base-uri 'self'; object-src 'none'; " +
	"script-src 'none'; style-src 'self'; img-src 'self' data:; frame-ancestors 'self'; form-action 'self' https:"

// SecurityHeadersOptions configures the security headers middleware.
// An empty string (or zero) disables the corresponding header.
type SecurityHeadersOptions struct {
	XFrameOptions       string
	XContentTypeOptions string
	ReferrerPolicy      string

	// CrossOriginOpenerPolicy isolates the browsing context.
	CrossOriginOpenerPolicy string

	// HSTSMaxAge is only sent on TLS requests.
	HSTSMaxAge            int
	HSTSIncludeSubDomains bool

	ContentSecurityPolicy string
}

// DefaultSecurityHeadersOptions returns the headers applied unless
// configuration says otherwise.
func DefaultSecurityHeadersOptions() SecurityHeadersOptions {
	return SecurityHeadersOptions{
		XFrameOptions:           "SAMEORIGIN",
		XContentTypeOptions:     "nosniff",
		ReferrerPolicy:          "no-referrer",
		CrossOriginOpenerPolicy: "same-origin",
		HSTSMaxAge:              15552000, // 180 days
		HSTSIncludeSubDomains:   true,
		ContentSecurityPolicy:   DefaultContentSecurityPolicy,
	}
}

// SecurityHeaders returns middleware that sets the headers in opts.
func SecurityHeaders(opts SecurityHeadersOptions) func(next http.Handler) http.Handler {
	var hsts string
	if opts.HSTSMaxAge > 0 {
		hsts = "max-age=" + strconv.Itoa(opts.HSTSMaxAge)
		if opts.HSTSIncludeSubDomains {
			hsts += "; includeSubDomains"
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			set := func(name, value string) {
				if value != "" {
					h.Set(name, value)
				}
			}
			set("X-Frame-Options", opts.XFrameOptions)
			set("X-Content-Type-Options", opts.XContentTypeOptions)
			set("Referrer-Policy", opts.ReferrerPolicy)
			set("Cross-Origin-Opener-Policy", opts.CrossOriginOpenerPolicy)
			set("Content-Security-Policy", opts.ContentSecurityPolicy)
			if r.TLS != nil {
				set("Strict-Transport-Security", hsts)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeadersFromConfig applies the default headers, with the CSP
// overridden by content_security_policy when set. It is a no-op when
// enable_security_headers is false.
func SecurityHeadersFromConfig(cfg *config.Config) func(next http.Handler) http.Handler {
	if cfg == nil || !cfg.Security.EnableSecurityHeaders {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	opts := DefaultSecurityHeadersOptions()
	if cfg.Security.ContentSecurityPolicy != "" {
		opts.ContentSecurityPolicy = cfg.Security.ContentSecurityPolicy
	}
	return SecurityHeaders(opts)
}
