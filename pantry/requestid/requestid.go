// requestid/requestid.go
// Package requestid carries the ID assigned by chi's RequestID middleware
// into log lines and outbound HTTP calls.
package requestid

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Header is the header outbound requests carry the ID in.
const Header = "X-Request-ID"

// Get returns the request ID in ctx, or "".
func Get(ctx context.Context) string {
	return middleware.GetReqID(ctx)
}

// Field returns a zap field with the request ID, or a no-op field when
// ctx has none.
func Field(ctx context.Context) zap.Field {
	id := Get(ctx)
	if id == "" {
		return zap.Skip()
	}
	return zap.String("request_id", id)
}

// Transport sets Header on outgoing requests whose context carries an ID.
type Transport struct {
	// Base defaults to http.DefaultTransport.
	Base http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get(Header) == "" {
		if id := Get(req.Context()); id != "" {
			req = req.Clone(req.Context())
			req.Header.Set(Header, id)
		}
	}
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}

// Client returns an HTTP client that propagates request IDs.
func Client(timeout time.Duration) *http.Client {
	return &http.Client{Transport: &Transport{}, Timeout: timeout}
}
