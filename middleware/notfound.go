package middleware

import (
	"net/http"

	"github.com/dalemusser/formrelay/httputil"
	"go.uber.org/zap"
)

const notFoundMessage = "404 Not Found"

// NotFoundHandler logs the miss and answers 404 with {"message":"404 Not
// Found"} for JSON clients and the same text as text/plain otherwise.
// It is meant for both chi.Router.NotFound and MethodNotAllowed: the
// relay has no resource a wrong method could partially match.
func NotFoundHandler(logger *zap.Logger) http.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		logger.Info("not_found",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote_ip", r.RemoteAddr),
		)

		if httputil.WantsJSON(r) {
			httputil.JSONMessage(w, http.StatusNotFound, notFoundMessage)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(notFoundMessage))
	}
}
