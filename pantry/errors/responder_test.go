package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeViews struct {
	name string
	data any
	fail bool
}

func (f *fakeViews) Render(w http.ResponseWriter, status int, name string, data any) error {
	if f.fail {
		return stderrors.New("boom")
	}
	f.name, f.data = name, data
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, "view:%s", name)
	return nil
}

func jsonRequest() *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/", nil)
	r.Header.Set("Accept", "application/json")
	return r
}

func TestRespond_JSONEnvelope(t *testing.T) {
	rs := NewResponder(&fakeViews{}, nil)
	rec := httptest.NewRecorder()

	rs.Respond(rec, jsonRequest(), Validation("Invalid fields, please try again!"))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var got Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, Envelope{
		Success:    false,
		StatusCode: 400,
		Message:    "Invalid fields, please try again!",
		IsError:    true,
	}, got)
}

func TestRespond_Defaults(t *testing.T) {
	rs := NewResponder(nil, nil)

	for _, err := range []error{
		&Error{},
		stderrors.New("database exploded"),
	} {
		rec := httptest.NewRecorder()
		rs.Respond(rec, jsonRequest(), err)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		var got map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "Internal Server Error", got["message"])
		assert.EqualValues(t, 500, got["statusCode"])
		assert.NotContains(t, rec.Body.String(), "database exploded")
	}
}

func TestRespond_BrowserGetsErrorView(t *testing.T) {
	views := &fakeViews{}
	rs := NewResponder(views, nil)
	r := httptest.NewRequest(http.MethodPost, "/", nil)
	r.Header.Set("Accept", "text/html")
	r.Header.Set("Referer", "https://site.example/contact")
	rec := httptest.NewRecorder()

	rs.Respond(rec, r, Delivery("Error submitting form, please try again!", stderrors.New("smtp down")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "view:error", rec.Body.String())
	assert.Equal(t, ErrorView, views.name)
	assert.Equal(t, ViewData{
		Origin:  "https://site.example/contact",
		Message: "Error submitting form, please try again!",
		Status:  500,
	}, views.data)
}

func TestRespond_ViewFailureFallsBackToText(t *testing.T) {
	rs := NewResponder(&fakeViews{fail: true}, nil)
	r := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()

	rs.Respond(rec, r, TooManyRequests("Too many submissions, please try again later!"))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Too many submissions, please try again later!", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
}

func TestHandle(t *testing.T) {
	rs := NewResponder(nil, nil)
	h := rs.Handle(func(w http.ResponseWriter, r *http.Request) error {
		return fmt.Errorf("wrapped: %w", MissingDestination("no destination"))
	})
	rec := httptest.NewRecorder()
	h(rec, jsonRequest())

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"message":"no destination"`)
}

func TestStatusFromError(t *testing.T) {
	assert.Equal(t, http.StatusOK, StatusFromError(nil))
	assert.Equal(t, http.StatusNotFound, StatusFromError(NotFound("x")))
	assert.Equal(t, http.StatusInternalServerError, StatusFromError(stderrors.New("x")))
}
