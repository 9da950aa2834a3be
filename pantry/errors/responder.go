// errors/responder.go
package errors

import (
	"net/http"

	"github.com/dalemusser/formrelay/httputil"
	"github.com/dalemusser/formrelay/pantry/requestid"
	"go.uber.org/zap"
)

// ErrorView is the name of the page rendered for browser clients.
const ErrorView = "error"

// Envelope is the JSON body written for JSON clients.
type Envelope struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	IsError    bool   `json:"isError"`
}

// ViewData is passed to the error view.
type ViewData struct {
	Origin  string
	Message string
	Status  int
}

// ViewRenderer renders a named page. Implementations must not write to w
// when they return an error.
type ViewRenderer interface {
	Render(w http.ResponseWriter, status int, name string, data any) error
}

// Responder is the terminal sink for request failures. It writes exactly
// one response per call and never fails further.
type Responder struct {
	views  ViewRenderer
	logger *zap.Logger
}

// NewResponder returns a Responder. views may be nil, in which case
// browser clients get a plain-text body.
func NewResponder(views ViewRenderer, logger *zap.Logger) *Responder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Responder{views: views, logger: logger}
}

// Respond writes err to w, as a JSON envelope or as the error view,
// depending on what the client accepts.
func (rs *Responder) Respond(w http.ResponseWriter, r *http.Request, err error) {
	e := From(err)
	if e == nil {
		e = Internal("")
	}
	status := e.HTTPStatus()
	msg := e.PublicMessage()

	if status >= http.StatusInternalServerError {
		rs.logger.Error("request failed",
			zap.String("code", e.Code),
			zap.Int("status", status),
			zap.String("path", r.URL.Path),
			requestid.Field(r.Context()),
			zap.Error(e.Err),
		)
	} else {
		rs.logger.Debug("request rejected",
			zap.String("code", e.Code),
			zap.Int("status", status),
			zap.String("path", r.URL.Path),
		)
	}

	if httputil.WantsJSON(r) {
		httputil.WriteJSON(w, status, Envelope{
			Success:    false,
			StatusCode: status,
			Message:    msg,
			IsError:    true,
		})
		return
	}

	if rs.views != nil {
		data := ViewData{Origin: httputil.Origin(r), Message: msg, Status: status}
		rerr := rs.views.Render(w, status, ErrorView, data)
		if rerr == nil {
			return
		}
		rs.logger.Error("error view render failed", zap.Error(rerr))
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(msg))
}

// HandlerFunc is a handler that reports failure by returning an error.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Handle adapts h to http.HandlerFunc, sending any returned error to the
// Responder.
func (rs *Responder) Handle(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			rs.Respond(w, r, err)
		}
	}
}

// StatusFromError returns the HTTP status for err, 200 for nil.
func StatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	return From(err).HTTPStatus()
}
