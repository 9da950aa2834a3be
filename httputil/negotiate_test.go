package httputil

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWantsJSON(t *testing.T) {
	tests := []struct {
		name   string
		accept string
		want   bool
	}{
		{"missing header", "", false},
		{"exact", "application/json", true},
		{"with charset param", "application/json; charset=utf-8", true},
		{"browser default", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8", false},
		{"wildcard only", "*/*", false},
		{"json among others", "text/html, application/json;q=0.5", true},
		{"json explicitly refused", "application/json;q=0, */*", false},
		{"json refused no fallback", "application/json;q=0", false},
		{"wildcard admits named json", "text/plain, */*;q=0.1, application/json;q=0.0", false},
		{"plain text", "text/plain", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.accept != "" {
				r.Header.Set("Accept", tt.accept)
			}
			if got := WantsJSON(r); got != tt.want {
				t.Errorf("WantsJSON(%q) = %v, want %v", tt.accept, got, tt.want)
			}
		})
	}
}

func TestWantsJSON_MultipleHeaderLines(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Add("Accept", "text/html")
	r.Header.Add("Accept", "application/json")
	if !WantsJSON(r) {
		t.Error("expected JSON when a second Accept line names application/json")
	}
}
