// Package mailer delivers account e-mails: verification codes and password
// reset links. Senders are interchangeable; the SMTP sender is used in
// production and the log sender when no SMTP host is configured.
package mailer

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/taskforge/internal/logging"
)

// Message is a rendered HTML e-mail addressed to a single recipient.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers a message. Implementations must honour ctx cancellation.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender writes messages to the logger instead of delivering them.
type LogSender struct {
	logger logging.Logger
}

func NewLogSender(logger logging.Logger) *LogSender {
	return &LogSender{logger: logger.With("module", "mailer")}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("mailer: empty recipient")
	}
	s.logger.Info(ctx, "email not delivered, smtp disabled",
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.HTML,
	)
	return nil
}
