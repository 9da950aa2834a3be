// errors/errors.go
// Package errors defines the error signal every failing stage of a request
// produces, and the Responder that turns it into exactly one HTTP response.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// DefaultMessage is used when a signal carries no message.
const DefaultMessage = "Internal Server Error"

// Error is a status code + message pair describing one failure. Handlers
// return it; the Responder consumes it.
type Error struct {
	// Code is a machine-readable error code (e.g., "validation_failed").
	Code string `json:"code"`

	// Message is safe to show to the client.
	Message string `json:"message"`

	// Status is the HTTP status code. Zero means 500.
	Status int `json:"-"`

	// Err is the underlying cause; it is logged, never sent to the client.
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap attaches an underlying cause.
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

// HTTPStatus returns the status code, defaulting to 500.
func (e *Error) HTTPStatus() int {
	if e.Status == 0 {
		return http.StatusInternalServerError
	}
	return e.Status
}

// PublicMessage returns the message, defaulting to DefaultMessage.
func (e *Error) PublicMessage() string {
	if e.Message == "" {
		return DefaultMessage
	}
	return e.Message
}

// New creates a new Error with code, message, and HTTP status.
func New(code, message string, status int) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Status:  status,
	}
}

// From extracts an *Error from err if possible. Anything else becomes a
// 500 with no public message, so internals never reach the client.
func From(err error) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return e
	}

	return &Error{
		Code:   CodeInternalError,
		Status: http.StatusInternalServerError,
		Err:    err,
	}
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

const (
	CodeValidationFailed   = "validation_failed"
	CodeMissingDestination = "missing_destination"
	CodeDeliveryFailed     = "delivery_failed"
	CodeCaptchaFailed      = "captcha_failed"
	CodeNotFound           = "not_found"
	CodeMethodNotAllowed   = "method_not_allowed"
	CodeTooManyRequests    = "too_many_requests"
	CodePayloadTooLarge    = "payload_too_large"
	CodeInternalError      = "internal_error"
)

// Validation creates a 400 for malformed or missing submission fields.
func Validation(message string) *Error {
	return New(CodeValidationFailed, message, http.StatusBadRequest)
}

// MissingDestination creates a 400 for a route that needs a destination
// address the request did not supply.
func MissingDestination(message string) *Error {
	return New(CodeMissingDestination, message, http.StatusBadRequest)
}

// Delivery creates a 500 for a failed mail dispatch. The cause is kept
// for logging only.
func Delivery(message string, cause error) *Error {
	return New(CodeDeliveryFailed, message, http.StatusInternalServerError).Wrap(cause)
}

// Captcha creates a 400 for a failed CAPTCHA verification.
func Captcha(message string) *Error {
	return New(CodeCaptchaFailed, message, http.StatusBadRequest)
}

// NotFound creates a 404 Not Found error.
func NotFound(message string) *Error {
	return New(CodeNotFound, message, http.StatusNotFound)
}

// MethodNotAllowed creates a 405 Method Not Allowed error.
func MethodNotAllowed(message string) *Error {
	return New(CodeMethodNotAllowed, message, http.StatusMethodNotAllowed)
}

// TooManyRequests creates a 429 Too Many Requests error.
func TooManyRequests(message string) *Error {
	return New(CodeTooManyRequests, message, http.StatusTooManyRequests)
}

// Internal creates a 500 Internal Server Error.
func Internal(message string) *Error {
	return New(CodeInternalError, message, http.StatusInternalServerError)
}
