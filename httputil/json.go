// httputil/json.go
// Package httputil holds small helpers shared by HTTP handlers: JSON
// writing and binding, and content negotiation.
package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"

	"go.uber.org/zap"
)

// MessageResponse is the body of plain JSON acknowledgements such as
// {"message": "Form submitted successfully!"}.
type MessageResponse struct {
	Message string `json:"message"`
}

var jsonLogger = zap.NewNop()

// SetJSONLogger sets the logger used to report encoding failures that
// happen after the status line has been written.
func SetJSONLogger(logger *zap.Logger) {
	if logger != nil {
		jsonLogger = logger
	}
}

// WriteJSON writes v as JSON with the given status code. Status codes
// outside 100-599 become 500.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	if status < 100 || status > 599 {
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		typeName := "nil"
		if v != nil {
			typeName = reflect.TypeOf(v).String()
		}
		jsonLogger.Error("json encoding failed after headers sent",
			zap.String("type", typeName), zap.Error(err))
	}
}

// JSONMessage writes {"message": message} with the given status code.
func JSONMessage(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, MessageResponse{Message: message})
}

// BindJSON decodes the request body as JSON into v, ignoring
// unknown fields. It rejects empty bodies and bodies containing more than
// one JSON value. The error messages are safe to return to clients.
func BindJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return errors.New("request body is empty")
	}
	defer r.Body.Close()

	// ContentLength is -1 for chunked bodies; those hit io.EOF below.
	if r.ContentLength == 0 {
		return errors.New("request body is empty")
	}

	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(v); err != nil {
		return parseJSONError(err)
	}

	if dec.More() {
		return errors.New("request body contains multiple JSON values")
	}

	return nil
}

// parseJSONError converts json decoding errors into user-friendly messages.
func parseJSONError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, io.EOF) {
		return errors.New("request body is empty")
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return fmt.Errorf("malformed JSON at position %d", syntaxErr.Offset)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Errorf("invalid value for field %q: expected %s", typeErr.Field, typeErr.Type.String())
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fmt.Errorf("request body too large: %w", err)
	}

	return errors.New("invalid JSON in request body")
}
