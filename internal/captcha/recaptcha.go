// internal/captcha/recaptcha.go
// Package captcha verifies reCAPTCHA tokens against Google's siteverify
// endpoint.
package captcha

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/formrelay/pantry/requestid"
)

// VerifyURL is Google's siteverify endpoint.
const VerifyURL = "https://www.google.com/recaptcha/api/siteverify"

// FormField is the form field reCAPTCHA widgets post their token in.
const FormField = "g-recaptcha-response"

// ErrMissingToken is returned when the request carries no token.
var ErrMissingToken = errors.New("captcha: missing token")

// Verifier checks a token for the client at remoteIP.
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) (bool, error)
}

// Recaptcha verifies tokens with the siteverify API.
type Recaptcha struct {
	secret   string
	endpoint string
	client   *http.Client
}

// Option configures a Recaptcha.
type Option func(*Recaptcha)

// WithEndpoint overrides the siteverify URL.
func WithEndpoint(u string) Option { return func(r *Recaptcha) { r.endpoint = u } }

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option { return func(r *Recaptcha) { r.client = c } }

// NewRecaptcha returns a verifier using secret.
func NewRecaptcha(secret string, opts ...Option) *Recaptcha {
	r := &Recaptcha{
		secret:   secret,
		endpoint: VerifyURL,
		client:   requestid.Client(10 * time.Second),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

type verifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify reports whether Google accepted token. A false result with a nil
// error means the token was rejected; an error means Google could not be
// asked.
func (r *Recaptcha) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	if strings.TrimSpace(token) == "" {
		return false, ErrMissingToken
	}

	form := url.Values{"secret": {r.secret}, "response": {token}}
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("captcha: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := r.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("captcha: verify: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("captcha: verify: unexpected status %d", resp.StatusCode)
	}

	var vr verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		return false, fmt.Errorf("captcha: decode response: %w", err)
	}
	return vr.Success, nil
}
