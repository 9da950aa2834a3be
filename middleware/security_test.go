package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/formrelay/config"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestSecurityHeaders_Defaults(t *testing.T) {
	handler := SecurityHeaders(DefaultSecurityHeadersOptions())(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	tests := []struct {
		header string
		want   string
	}{
		{"X-Frame-Options", "SAMEORIGIN"},
		{"X-Content-Type-Options", "nosniff"},
		{"Referrer-Policy", "no-referrer"},
		{"Cross-Origin-Opener-Policy", "same-origin"},
		{"Content-Security-Policy", DefaultContentSecurityPolicy},
	}
	for _, tt := range tests {
		if got := rec.Header().Get(tt.header); got != tt.want {
			t.Errorf("%s = %q, want %q", tt.header, got, tt.want)
		}
	}

	if hsts := rec.Header().Get("Strict-Transport-Security"); hsts != "" {
		t.Errorf("HSTS should not be set for HTTP requests, got %q", hsts)
	}
}

func TestSecurityHeaders_HSTS_OnlyForTLS(t *testing.T) {
	handler := SecurityHeaders(DefaultSecurityHeadersOptions())(okHandler())

	req := httptest.NewRequest(http.MethodGet, "https://example.com/", nil)
	req.TLS = &tls.ConnectionState{}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	want := "max-age=15552000; includeSubDomains"
	if got := rec.Header().Get("Strict-Transport-Security"); got != want {
		t.Errorf("HSTS = %q, want %q", got, want)
	}
}

func TestSecurityHeaders_DisabledHeaders(t *testing.T) {
	handler := SecurityHeaders(SecurityHeadersOptions{XContentTypeOptions: "nosniff"})(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.TLS = &tls.ConnectionState{}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	for _, h := range []string{"X-Frame-Options", "Referrer-Policy", "Content-Security-Policy", "Strict-Transport-Security"} {
		if got := rec.Header().Get(h); got != "" {
			t.Errorf("%s should be unset, got %q", h, got)
		}
	}
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
}

func TestSecurityHeadersFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.Config
		wantCSP string
	}{
		{"nil config", nil, ""},
		{"disabled", &config.Config{}, ""},
		{"enabled default csp", &config.Config{Security: config.SecurityConfig{EnableSecurityHeaders: true}}, DefaultContentSecurityPolicy},
		{"enabled custom csp", &config.Config{Security: config.SecurityConfig{
			EnableSecurityHeaders: true,
			ContentSecurityPolicy: "default-src 'none'",
		}}, "default-src 'none'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			SecurityHeadersFromConfig(tt.cfg)(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			if got := rec.Header().Get("Content-Security-Policy"); got != tt.wantCSP {
				t.Errorf("CSP = %q, want %q", got, tt.wantCSP)
			}
			if rec.Code != http.StatusOK {
				t.Errorf("status = %d, want 200", rec.Code)
			}
		})
	}
}
