// internal/relay/handler.go
// Package relay accepts contact-form submissions and forwards them as
// email.
package relay

import (
	"context"
	"errors"
	"net"
	"net/http"

	"go.uber.org/zap"

	"github.com/dalemusser/formrelay/httputil"
	"github.com/dalemusser/formrelay/internal/captcha"
	"github.com/dalemusser/formrelay/metrics"
	"github.com/dalemusser/formrelay/pantry/email"
	pe "github.com/dalemusser/formrelay/pantry/errors"
	"github.com/dalemusser/formrelay/pantry/urlutil"
	"github.com/dalemusser/formrelay/pantry/validate"
)

// SuccessView is the page rendered after delivery for browser clients.
const SuccessView = "success"

// PageData is passed to the success view.
type PageData struct {
	Origin string
}

// Deps are the collaborators shared by every relay route.
type Deps struct {
	Dispatcher email.Dispatcher
	Template   *email.SubmissionTemplate
	Responder  *pe.Responder
	Views      pe.ViewRenderer

	// Captcha, when set, must accept every submission's token.
	Captcha captcha.Verifier

	Logger *zap.Logger
}

// Handler runs one submission through validation, delivery and the
// response. The destination comes from its DestinationResolver.
type Handler struct {
	deps      Deps
	dest      DestinationResolver
	validator *validate.Validator
}

// NewHandler returns a Handler relaying to the address dest resolves.
func NewHandler(deps Deps, dest DestinationResolver) *Handler {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Responder == nil {
		deps.Responder = pe.NewResponder(deps.Views, deps.Logger)
	}
	return &Handler{deps: deps, dest: dest, validator: validate.New()}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.deps.Responder.Handle(h.submit)(w, r)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) error {
	s, err := decodeSubmission(r)
	if err != nil {
		metrics.Submission(metrics.OutcomeInvalid)
		return err
	}
	s.Destination = h.dest.Destination(r)
	s.normalize()

	if errs := h.validator.Struct(s); errs.HasErrors() {
		metrics.Submission(metrics.OutcomeInvalid)
		h.deps.Logger.Debug("submission rejected",
			zap.Strings("fields", errs.Fields()),
			zap.String("detail", errs.Error()))
		return pe.Validation(MsgInvalidFields).Wrap(errs)
	}

	if s.Destination == "" {
		metrics.Submission(metrics.OutcomeMissingDestination)
		return pe.MissingDestination(MsgMissingDestination)
	}

	// Delivery must not be cut short by a client hanging up mid-send.
	ctx := context.WithoutCancel(r.Context())

	if h.deps.Captcha != nil {
		if err := h.verifyCaptcha(ctx, r, s.CaptchaToken); err != nil {
			metrics.Submission(metrics.OutcomeCaptchaFailed)
			return err
		}
	}

	msg, err := h.deps.Template.Build(s.Destination, email.Submission{
		Name:    s.Name,
		Email:   s.Email,
		Message: s.Message,
	})
	if err != nil {
		metrics.Submission(metrics.OutcomeDispatchFailed)
		return pe.Delivery(MsgDispatchFailed, err)
	}

	if err := h.deps.Dispatcher.Dispatch(ctx, msg); err != nil {
		metrics.Submission(metrics.OutcomeDispatchFailed)
		return pe.Delivery(MsgDispatchFailed, err)
	}

	metrics.Submission(metrics.OutcomeDelivered)
	h.deps.Logger.Info("submission delivered", zap.String("to", s.Destination))

	if httputil.WantsJSON(r) {
		httputil.JSONMessage(w, http.StatusOK, MsgDelivered)
		return nil
	}
	if next, ok := urlutil.Continuation(s.Next); ok {
		http.Redirect(w, r, next, http.StatusFound)
		return nil
	}
	return h.renderSuccess(w, r)
}

func (h *Handler) verifyCaptcha(ctx context.Context, r *http.Request, token string) error {
	ok, err := h.deps.Captcha.Verify(ctx, token, clientIP(r))
	if err != nil && !errors.Is(err, captcha.ErrMissingToken) {
		h.deps.Logger.Warn("captcha verification failed", zap.Error(err))
	}
	if !ok {
		return pe.Captcha(MsgCaptchaFailed).Wrap(err)
	}
	return nil
}

func (h *Handler) renderSuccess(w http.ResponseWriter, r *http.Request) error {
	data := PageData{Origin: httputil.Origin(r)}
	if h.deps.Views != nil {
		err := h.deps.Views.Render(w, http.StatusOK, SuccessView, data)
		if err == nil {
			return nil
		}
		h.deps.Logger.Error("success view render failed", zap.Error(err))
	}
	// The mail is already out; only the page failed.
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(MsgDelivered))
	return nil
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
