// httputil/negotiate.go
package httputil

import (
	"net/http"
	"strings"

	"github.com/munnerz/goautoneg"
)

const mimeJSON = "application/json"

// WantsJSON reports whether the client should get a JSON response rather
// than an HTML page. Both must hold:
//
//   - the Accept header admits application/json with q > 0, and
//   - the header literally names application/json.
//
// The second condition keeps browsers (which send */*) on the HTML path.
// A missing or empty Accept header yields false.
func WantsJSON(r *http.Request) bool {
	accept := strings.Join(r.Header.Values("Accept"), ",")
	if strings.TrimSpace(accept) == "" {
		return false
	}
	if !strings.Contains(accept, mimeJSON) {
		return false
	}
	return acceptsJSON(accept)
}

// acceptsJSON applies the most specific matching media range, so
// "application/json;q=0, */*" rejects JSON.
func acceptsJSON(accept string) bool {
	best := -1
	q := 0.0
	for _, a := range goautoneg.ParseAccept(accept) {
		rank := -1
		switch {
		case strings.EqualFold(a.Type, "application") && strings.EqualFold(a.SubType, "json"):
			rank = 2
		case strings.EqualFold(a.Type, "application") && a.SubType == "*":
			rank = 1
		case a.Type == "*" && a.SubType == "*":
			rank = 0
		}
		if rank > best {
			best, q = rank, a.Q
		}
	}
	return best >= 0 && q > 0
}

// Origin returns the page the request came from: the Origin header, or
// the Referer when Origin is absent.
func Origin(r *http.Request) string {
	if o := r.Header.Get("Origin"); o != "" {
		return o
	}
	return r.Header.Get("Referer")
}
