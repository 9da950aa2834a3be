package httputil

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWriteJSON_ClampsStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, 42, MessageResponse{Message: "x"})
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if got := rec.Body.String(); got != "{\"message\":\"x\"}\n" {
		t.Errorf("body = %q", got)
	}
}

func TestBindJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}
	tests := []struct {
		name    string
		body    string
		wantErr string
		want    string
	}{
		{"ok with unknown field", `{"name":"Ann","extra":1}`, "", "Ann"},
		{"empty", ``, "request body is empty", ""},
		{"malformed", `{"name":`, "invalid JSON in request body", ""},
		{"syntax", `{"name" "x"}`, "malformed JSON at position", ""},
		{"wrong type", `{"name":5}`, `invalid value for field "name"`, ""},
		{"two values", `{"name":"a"} {"name":"b"}`, "multiple JSON values", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var p payload
			err := BindJSON(r, &p)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if p.Name != tt.want {
					t.Errorf("Name = %q, want %q", p.Name, tt.want)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestBindJSON_TooLargeKeepsMaxBytesError(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a long enough value"}`))
	r.Body = http.MaxBytesReader(httptest.NewRecorder(), r.Body, 8)

	var p struct {
		Name string `json:"name"`
	}
	err := BindJSON(r, &p)

	var tooLarge *http.MaxBytesError
	if !errors.As(err, &tooLarge) {
		t.Fatalf("err = %v, want a wrapped *http.MaxBytesError", err)
	}
	if tooLarge.Limit != 8 {
		t.Errorf("Limit = %d, want 8", tooLarge.Limit)
	}
	if !strings.HasPrefix(err.Error(), "request body too large") {
		t.Errorf("err = %q", err)
	}
}
