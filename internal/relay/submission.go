// internal/relay/submission.go
package relay

import (
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/gorilla/schema"

	"github.com/dalemusser/formrelay/httputil"
	pe "github.com/dalemusser/formrelay/pantry/errors"
)

// Submission is one contact-form post. It lives for a single request.
type Submission struct {
	Name    string `schema:"name" json:"name" validate:"required,max=100"`
	Email   string `schema:"email" json:"email" validate:"required,email"`
	Message string `schema:"message" json:"message" validate:"required,max=5000"`

	// Destination is filled by a DestinationResolver, never by the client.
	Destination string `schema:"-" json:"-" validate:"omitempty,email"`

	// Next is the optional post-success redirect target.
	Next string `schema:"_next" json:"_next"`

	// CaptchaToken is the reCAPTCHA widget's token, if any.
	CaptchaToken string `schema:"g-recaptcha-response" json:"g-recaptcha-response"`
}

func (s *Submission) normalize() {
	s.Name = strings.TrimSpace(s.Name)
	s.Email = strings.TrimSpace(s.Email)
	s.Message = strings.TrimSpace(s.Message)
	s.Destination = strings.TrimSpace(s.Destination)
	s.Next = strings.TrimSpace(s.Next)
}

var formDecoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

// decodeSubmission reads a urlencoded, multipart or JSON body.
func decodeSubmission(r *http.Request) (Submission, error) {
	var s Submission

	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt == "application/json" {
		if err := httputil.BindJSON(r, &s); err != nil {
			return s, bodyError(err)
		}
		return s, nil
	}

	if mt == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			return s, bodyError(err)
		}
	} else if err := r.ParseForm(); err != nil {
		return s, bodyError(err)
	}

	if err := formDecoder.Decode(&s, r.PostForm); err != nil {
		return s, pe.Validation(MsgInvalidFields).Wrap(err)
	}
	return s, nil
}

const maxMultipartMemory = 1 << 20

func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return pe.New(pe.CodePayloadTooLarge, MsgTooLarge, http.StatusRequestEntityTooLarge).Wrap(err)
	}
	return pe.Validation(MsgInvalidFields).Wrap(err)
}
