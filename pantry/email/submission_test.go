package email_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dalemusser/formrelay/pantry/email"
)

func TestSubmissionTemplate_Build(t *testing.T) {
	t.Parallel()

	tpl := email.NewSubmissionTemplate("https://www.fleamarketyo.it/", "")
	msg, err := tpl.Build("contact@fleamarketyo.it", email.Submission{
		Name:    "Ann",
		Email:   "ann@x.com",
		Message: "hi",
	})
	require.NoError(t, err)

	assert.Equal(t, "contact@fleamarketyo.it", msg.To)
	assert.Equal(t, "ann@x.com", msg.ReplyTo)
	assert.Equal(t, "Nuovo contatto", msg.Subject)
	assert.Equal(t, "Someone just submitted your form on https://www.fleamarketyo.it/.\n\n"+
		"Here's what they had to say:\n\n"+
		"Name:\n\nAnn\n\n"+
		"Email:\n\nann@x.com\n\n"+
		"Message:\n\nhi\n\n", msg.Text)
	assert.Contains(t, msg.HTML, "<p><strong>Name:</strong></p>\n<p>Ann</p>")
	assert.Contains(t, msg.HTML, "<p>hi</p>")
}

func TestSubmissionTemplate_Deterministic(t *testing.T) {
	t.Parallel()

	tpl := email.NewSubmissionTemplate("https://site.example/", "Hello")
	s := email.Submission{Name: "Bo", Email: "bo@x.com", Message: "line1\nline2"}

	a, err := tpl.Build("to@x.com", s)
	require.NoError(t, err)
	b, err := tpl.Build("to@x.com", s)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, "Hello", a.Subject)
}

func TestSubmissionTemplate_EscapesHTML(t *testing.T) {
	t.Parallel()

	tpl := email.NewSubmissionTemplate("https://site.example/", "")
	msg, err := tpl.Build("to@x.com", email.Submission{
		Name:    `<script>alert("x")</script>`,
		Email:   "ann@x.com",
		Message: "a & b",
	})
	require.NoError(t, err)

	assert.NotContains(t, msg.HTML, "<script>")
	assert.Contains(t, msg.HTML, "&lt;script&gt;")
	assert.Contains(t, msg.HTML, "a &amp; b")
	// plain text keeps the submission verbatim
	assert.Contains(t, msg.Text, `<script>alert("x")</script>`)
}
