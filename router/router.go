// router/router.go
// Package router builds the chi.Router every formrelay route hangs off.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/dalemusser/formrelay/config"
	"github.com/dalemusser/formrelay/logging"
	"github.com/dalemusser/formrelay/metrics"
	"github.com/dalemusser/formrelay/middleware"
)

// New creates a chi.Router pre-wired with the standard middleware stack:
//   - RequestID
//   - RealIP
//   - Recoverer (panic → onPanic, usually a 500 from the error responder)
//   - body size limit (MaxRequestBodyBytes)
//   - metrics HTTP middleware
//   - request logging
//   - security headers, CORS and compression, as configured
//
// Unknown routes and wrong methods both get the negotiated 404.
// It does NOT mount health, version or the relay; those are app-level.
func New(cfg *config.Config, logger *zap.Logger, onPanic http.HandlerFunc) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(logging.Recoverer(logger, onPanic))

	r.Use(middleware.LimitBodySize(cfg.MaxRequestBodyBytes))

	r.Use(metrics.HTTPMetrics)
	r.Use(logging.RequestLogger(logger))

	r.Use(middleware.SecurityHeadersFromConfig(cfg))
	r.Use(middleware.CORSFromConfig(cfg))
	r.Use(middleware.CompressFromConfig(cfg))

	notFound := middleware.NotFoundHandler(logger)
	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	return r
}
