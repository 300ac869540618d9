// Package notify delivers rendered account mail. Delivery failures are the
// caller's to log; they never reach the HTTP response.
package notify

import (
	"context"
	"log/slog"
)

type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text"`
}

type Sink interface {
	Send(ctx context.Context, msg Message) error
}

// LogSink writes messages to the log. Used when no broker is configured.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Send(ctx context.Context, msg Message) error {
	l := s.Logger
	if l == nil {
		l = slog.Default()
	}
	l.InfoContext(ctx, "mail_logged", "to", msg.To, "subject", msg.Subject, "text", msg.Text)
	return nil
}
