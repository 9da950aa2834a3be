package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSubmission(t *testing.T) {
	before := testutil.ToFloat64(submissions.WithLabelValues(OutcomeDelivered))
	Submission(OutcomeDelivered)
	Submission(OutcomeDelivered)
	after := testutil.ToFloat64(submissions.WithLabelValues(OutcomeDelivered))
	if after-before != 2 {
		t.Errorf("delivered counter grew by %v, want 2", after-before)
	}
}

func TestHTTPMetrics_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(HTTPMetrics)
	r.Post("/{destinationEmail}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	before := testutil.CollectAndCount(reqDuration)
	for _, p := range []string{"/a@x.com", "/b@x.com"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, p, nil))
	}
	if got := testutil.CollectAndCount(reqDuration) - before; got != 1 {
		t.Errorf("new series = %d, want 1", got)
	}
}
