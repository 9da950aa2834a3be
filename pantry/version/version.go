// version/version.go
// Package version reports build information set through ldflags:
//
//	go build -ldflags "-X github.com/dalemusser/formrelay/pantry/version.Version=1.0.0 \
//	                   -X github.com/dalemusser/formrelay/pantry/version.Commit=abc123"
package version

import (
	"net/http"
	"runtime"

	"github.com/dalemusser/formrelay/httputil"
	"github.com/go-chi/chi/v5"
)

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Info contains version and build information.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

// Get returns the current version info.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
}

// Mount attaches GET /version to r.
func Mount(r chi.Router) {
	info := Get()
	r.Get("/version", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, info)
	})
}

// String returns e.g. "1.2.3 (abc123, built 2024-01-15T10:30:00Z)".
func String() string {
	if Version == "dev" {
		return "dev"
	}
	return Version + " (" + Commit + ", built " + BuildTime + ")"
}
