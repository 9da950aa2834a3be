// pantry/email/submission.go
package email

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
)

// DefaultSubject is the subject line of relayed form submissions.
const DefaultSubject = "Nuovo contatto"

// Submission is the content of one contact-form post.
type Submission struct {
	Name    string
	Email   string
	Message string
}

const submissionText = `Someone just submitted your form on {{ .Site }}.

Here's what they had to say:

Name:

{{ .Name }}

Email:

{{ .Email }}

Message:

{{ .Message }}

`

const submissionHTML = `<p>Someone just submitted your form on {{ .Site }}.</p>
<p>Here's what they had to say:</p>
<p><strong>Name:</strong></p>
<p>{{ .Name }}</p>
<p><strong>Email:</strong></p>
<p>{{ .Email }}</p>
<p><strong>Message:</strong></p>
<p>{{ .Message }}</p>
`

// SubmissionTemplate turns Submissions into Messages. It is immutable
// after construction and safe for concurrent use.
type SubmissionTemplate struct {
	site    string
	subject string
	text    *texttemplate.Template
	html    *htmltemplate.Template
}

// NewSubmissionTemplate compiles the submission templates. site is quoted
// in the body; an empty subject means DefaultSubject.
func NewSubmissionTemplate(site, subject string) *SubmissionTemplate {
	if subject == "" {
		subject = DefaultSubject
	}
	return &SubmissionTemplate{
		site:    site,
		subject: subject,
		text:    texttemplate.Must(texttemplate.New("submission.txt").Parse(submissionText)),
		html:    htmltemplate.Must(htmltemplate.New("submission.html").Parse(submissionHTML)),
	}
}

// Build renders the message addressed to to. The HTML part escapes every
// field; the text part carries them verbatim. Replies go to the sender.
func (t *SubmissionTemplate) Build(to string, s Submission) (Message, error) {
	data := struct {
		Site string
		Submission
	}{t.site, s}

	var text, html bytes.Buffer
	if err := t.text.Execute(&text, data); err != nil {
		return Message{}, fmt.Errorf("email: render text body: %w", err)
	}
	if err := t.html.Execute(&html, data); err != nil {
		return Message{}, fmt.Errorf("email: render html body: %w", err)
	}

	return Message{
		To:      to,
		ReplyTo: s.Email,
		Subject: t.subject,
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}
