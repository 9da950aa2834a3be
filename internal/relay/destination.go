// internal/relay/destination.go
package relay

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
)

// DestinationResolver picks the address a submission is relayed to. An
// empty result means the request did not supply one.
type DestinationResolver interface {
	Destination(r *http.Request) string
}

// FixedDestination always relays to the same configured address.
type FixedDestination string

func (d FixedDestination) Destination(*http.Request) string { return string(d) }

// PathParam is the chi URL parameter carrying a destination address.
const PathParam = "destinationEmail"

// PathDestination reads the address from the {destinationEmail} path
// segment, percent-decoded.
type PathDestination struct{}

func (PathDestination) Destination(r *http.Request) string {
	raw := chi.URLParam(r, PathParam)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
