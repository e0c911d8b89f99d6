// Package mailer sends transactional auth emails.
package mailer

import (
	"context"
	"log/slog"
)

// Email is a single outbound message.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Sender delivers emails. Implementations must not block indefinitely; the
// caller controls cancellation via ctx.
type Sender interface {
	Send(ctx context.Context, email Email) error
}

// LogSender logs instead of sending. Used in dev and tests, and as the
// fallback when no delivery provider is configured.
type LogSender struct {
	Log *slog.Logger
}

func (s *LogSender) Send(_ context.Context, email Email) error {
	s.Log.Info("email suppressed (no delivery provider configured)",
		"to", email.To,
		"subject", email.Subject,
	)
	return nil
}
