package notify

import (
	"context"
	"log/slog"
)

// Suppressed wraps a Notifier (or any tasks.Notifier) and logs instead of
// sending, for local development and test runs where a stray email to a
// real member would be a mistake.
type Suppressed struct {
	log *slog.Logger
}

// NewSuppressed builds a notifier that never sends mail.
func NewSuppressed(log *slog.Logger) *Suppressed {
	if log == nil {
		log = slog.Default()
	}
	return &Suppressed{log: log}
}

func (s *Suppressed) NotifyMember(ctx context.Context, crsid, subject, template string, data map[string]any) error {
	s.log.Info("suppressed email", "to", "member:"+crsid, "subject", subject, "template", template)
	return nil
}

func (s *Suppressed) NotifySociety(ctx context.Context, society, subject, template string, data map[string]any) error {
	s.log.Info("suppressed email", "to", "society:"+society, "subject", subject, "template", template)
	return nil
}

func (s *Suppressed) NotifySysadmins(ctx context.Context, subject, body string) error {
	s.log.Info("suppressed sysadmin alert", "subject", subject)
	return nil
}
