package notifications

import (
	"context"
	"log/slog"
)

// LogMailer records emails in the log instead of sending them. It is used when no
// mail broker is configured.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) LogMailer {
	return LogMailer{logger: logger.With("component", "log_mailer")}
}

func (m LogMailer) Send(ctx context.Context, kind string, args map[string]string) error {
	m.logger.InfoContext(ctx, "Email not sent, no mail broker configured", "kind", kind, "args", args)
	return nil
}
