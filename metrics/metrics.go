// metrics/metrics.go
// Package metrics exposes Prometheus collectors for HTTP traffic and form
// submission outcomes.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Submission outcomes, used as the "outcome" label.
const (
	OutcomeDelivered          = "delivered"
	OutcomeInvalid            = "invalid"
	OutcomeMissingDestination = "missing_destination"
	OutcomeCaptchaFailed      = "captcha_failed"
	OutcomeDispatchFailed     = "dispatch_failed"
	OutcomeRateLimited        = "rate_limited"
)

var (
	reqDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: []float64{0.01, 0.1, 0.3, 1.2, 5},
		},
		[]string{"path", "method", "status"},
	)

	submissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formrelay_submissions_total",
			Help: "Form submissions by outcome.",
		},
		[]string{"outcome"},
	)
)

// RegisterDefault registers the Go runtime and process collectors plus
// this package's own. Call once at startup; repeated calls are harmless.
func RegisterDefault(logger *zap.Logger) {
	mustRegister(logger, "Go collector", collectors.NewGoCollector())
	mustRegister(logger, "process collector", collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	mustRegister(logger, "HTTP request histogram", reqDuration)
	mustRegister(logger, "submission counter", submissions)
}

// mustRegister ignores AlreadyRegisteredError and treats anything else as
// fatal.
func mustRegister(logger *zap.Logger, name string, c prometheus.Collector) {
	err := prometheus.Register(c)
	if err == nil {
		return
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		return
	}
	if logger != nil {
		logger.Fatal("failed to register "+name, zap.Error(err))
	}
	panic("metrics: failed to register " + name + ": " + err.Error())
}

// Submission counts one form submission with the given outcome.
func Submission(outcome string) {
	submissions.WithLabelValues(outcome).Inc()
}

// HTTPMetrics records request durations labeled by chi route pattern, so
// "/{destinationEmail}" is one series no matter the address. Requests that
// matched no route share the "unmatched" label.
func HTTPMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		protoMajor := r.ProtoMajor
		if protoMajor < 1 {
			protoMajor = 1
		}
		ww := middleware.NewWrapResponseWriter(w, protoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		path := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}

		reqDuration.WithLabelValues(path, r.Method, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	})
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
