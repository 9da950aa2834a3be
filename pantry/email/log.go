// pantry/email/log.go
package email

import (
	"context"

	"go.uber.org/zap"
)

// LogDispatcher writes messages to the logger instead of sending them.
// Meant for local development.
type LogDispatcher struct {
	logger *zap.Logger
}

// NewLog returns a LogDispatcher.
func NewLog(logger *zap.Logger) *LogDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogDispatcher{logger: logger}
}

// Dispatch implements Dispatcher. It fails only on an incomplete message.
func (d *LogDispatcher) Dispatch(_ context.Context, msg Message) error {
	if err := msg.check(); err != nil {
		return err
	}
	d.logger.Info("email not sent (log provider)",
		zap.String("to", msg.To),
		zap.String("reply_to", msg.ReplyTo),
		zap.String("subject", msg.Subject),
		zap.String("text", msg.Text),
	)
	return nil
}
