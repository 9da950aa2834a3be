// internal/relay/messages.go
package relay

// Client-facing messages.
const (
	MsgDelivered          = "Form submitted successfully!"
	MsgInvalidFields      = "Invalid fields, please try again!"
	MsgDispatchFailed     = "Error submitting form, please try again!"
	MsgMissingDestination = "No destination address configured; post to /{destinationEmail} instead."
	MsgCaptchaFailed      = "CAPTCHA verification failed, please try again!"
	MsgRateLimited        = "Too many submissions, please try again later!"
	MsgTooLarge           = "Request body too large."
	MsgNotFound           = "404 Not Found"
)
