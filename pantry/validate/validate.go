// Package validate checks decoded request structs before any side effect
// happens. Rules are expressed as go-playground/validator struct tags:
//
//	type Signup struct {
//	    Name  string `schema:"name"  validate:"required,max=100"`
//	    Email string `schema:"email" validate:"required,email"`
//	}
//
//	if errs := validate.Struct(signup); errs.HasErrors() {
//	    for _, e := range errs {
//	        fmt.Printf("%s: %s\n", e.Field, e.Message)
//	    }
//	}
//
// Field names in errors come from the `schema` tag so they match the form
// field the client posted.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Error is a single field-level validation failure.
type Error struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Field + " " + e.Message
}

// Errors is the ordered list of failures for one struct, in field
// declaration order.
type Errors []*Error

func (e Errors) Error() string {
	if len(e) == 0 {
		return ""
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// HasErrors returns true if there are any errors.
func (e Errors) HasErrors() bool {
	return len(e) > 0
}

// Fields returns the failing field names in order, without duplicates.
func (e Errors) Fields() []string {
	seen := make(map[string]struct{}, len(e))
	out := make([]string, 0, len(e))
	for _, err := range e {
		if _, ok := seen[err.Field]; ok {
			continue
		}
		seen[err.Field] = struct{}{}
		out = append(out, err.Field)
	}
	return out
}

// Validator wraps a configured *validator.Validate. It is safe for
// concurrent use.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator that names fields after their `schema` tag.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("schema"), ",", 2)[0]
		switch name {
		case "-":
			return ""
		case "":
			return fld.Name
		}
		return name
	})
	return &Validator{v: v}
}

// Struct validates s and returns nil when every rule passes.
// A value that is not a struct yields a single "struct" error.
func (val *Validator) Struct(s any) Errors {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Errors{{Field: "struct", Rule: "invalid", Message: err.Error()}}
	}

	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, &Error{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Param:   fe.Param(),
			Message: message(fe.Tag(), fe.Param()),
		})
	}
	return out
}

// Var validates a single value against a tag expression such as
// "required,email".
func (val *Validator) Var(value any, tag string) bool {
	return val.v.Var(value, tag) == nil
}

func message(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "max":
		return fmt.Sprintf("must be at most %s characters", param)
	case "min":
		return fmt.Sprintf("must be at least %s characters", param)
	default:
		return "is invalid"
	}
}

var defaultValidator = New()

// Struct validates s with the default validator.
func Struct(s any) Errors {
	return defaultValidator.Struct(s)
}

// IsEmail reports whether s is a non-empty, well-formed email address.
func IsEmail(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && defaultValidator.Var(s, "email")
}
