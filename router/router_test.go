package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/dalemusser/formrelay/config"
	"github.com/dalemusser/formrelay/pantry/requestid"
)

func testConfig() *config.Config {
	return &config.Config{MaxRequestBodyBytes: 1 << 20}
}

func serve(r http.Handler, method, path, accept string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestNew_NotFound(t *testing.T) {
	r := New(testConfig(), zap.NewNop(), nil)

	t.Run("json", func(t *testing.T) {
		rec := serve(r, http.MethodGet, "/unknown", "application/json")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"message":"404 Not Found"}`, rec.Body.String())
	})

	t.Run("plain", func(t *testing.T) {
		rec := serve(r, http.MethodGet, "/unknown", "text/html")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
		assert.Equal(t, "404 Not Found", rec.Body.String())
	})
}

func TestNew_WrongMethodIsNotFound(t *testing.T) {
	r := New(testConfig(), zap.NewNop(), nil)
	r.Post("/", func(w http.ResponseWriter, _ *http.Request) {})

	rec := serve(r, http.MethodGet, "/", "application/json")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNew_PanicUsesHandler(t *testing.T) {
	called := false
	r := New(testConfig(), zap.NewNop(), func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusInternalServerError)
	})
	r.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })

	rec := serve(r, http.MethodGet, "/boom", "")

	assert.True(t, called)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestNew_RequestIDFromHeader(t *testing.T) {
	r := New(testConfig(), zap.NewNop(), nil)
	var id string
	r.Get("/id", func(_ http.ResponseWriter, req *http.Request) {
		id = requestid.Get(req.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set("X-Request-Id", "abc")
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "abc", id)
}
