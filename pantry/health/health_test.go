package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, checks map[string]Check) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	rec := httptest.NewRecorder()
	Handler(checks, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestHandler_Liveness(t *testing.T) {
	rec, resp := serve(t, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, Response{Status: "ok"}, resp)
}

func TestHandler_Checks(t *testing.T) {
	ok := func(context.Context) error { return nil }
	bad := func(context.Context) error { return errors.New("dial tcp: refused") }

	rec, resp := serve(t, map[string]Check{"redis": ok})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", resp.Checks["redis"])

	rec, resp = serve(t, map[string]Check{"redis": bad, "other": ok})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "error: dial tcp: refused", resp.Checks["redis"])
	assert.Equal(t, "ok", resp.Checks["other"])
}
