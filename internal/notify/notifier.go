package notify

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/srcf/controlplane/internal/store"
	"github.com/srcf/controlplane/pkg/mailer"
	"github.com/srcf/controlplane/pkg/sanitizer"
)

// Notifier implements tasks.Notifier: it resolves a member/society CRSid
// to an email address against the store, sanitizes any free-text values
// in the template data, and sends via the underlying mailer.Mailer.
type Notifier struct {
	mail *mailer.Mailer
	db   store.Querier
	cfg  Config
}

// New builds a Notifier. db is used only to resolve member/society email
// addresses, never to issue writes.
func New(sender mailer.Sender, db store.Querier, cfg Config) (*Notifier, error) {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("notify: sub templates fs: %w", err)
	}
	renderer := mailer.NewRenderer(sub)
	m := mailer.New(sender, renderer, mailer.Config{
		FallbackSubject: "SRCF notification",
		DefaultLayout:   "base.html",
	})
	return &Notifier{mail: m, db: db, cfg: cfg}, nil
}

// sanitizeData strips any HTML out of string values before they reach a
// template, in case a member's free-text description/notes field ends up
// embedded in an email.
func sanitizeData(data map[string]any) map[string]any {
	clean := make(map[string]any, len(data))
	for k, v := range data {
		if s, ok := v.(string); ok {
			clean[k] = sanitizer.StripHTML(s)
			continue
		}
		clean[k] = v
	}
	return clean
}

func (n *Notifier) send(ctx context.Context, to, subject, template string, data map[string]any) error {
	if to == "" {
		return fmt.Errorf("notify: no recipient address for template %q", template)
	}
	err := n.mail.Send(ctx, mailer.SendParams{
		To:       to,
		Subject:  subject,
		Template: template + ".md",
		Data:     sanitizeData(data),
	})
	if err != nil {
		return fmt.Errorf("notify: send %q to %s: %w", template, to, err)
	}
	return nil
}

// NotifyMember emails a member at their recorded contact address.
func (n *Notifier) NotifyMember(ctx context.Context, crsid, subject, template string, data map[string]any) error {
	m, err := store.GetMember(ctx, n.db, crsid)
	if err != nil {
		return fmt.Errorf("notify: look up member %s: %w", crsid, err)
	}
	to := ""
	if m.Email != nil {
		to = *m.Email
	}
	return n.send(ctx, to, subject, template, data)
}

// NotifySociety emails a society's admin alias.
func (n *Notifier) NotifySociety(ctx context.Context, society, subject, template string, data map[string]any) error {
	s, err := store.GetSociety(ctx, n.db, society)
	if err != nil {
		return fmt.Errorf("notify: look up society %s: %w", society, err)
	}
	to := s.Email()
	if s.RoleEmail != nil && *s.RoleEmail != "" {
		to = *s.RoleEmail
	}
	return n.send(ctx, to, subject, template, data)
}

// NotifySysadmins sends a plain alert, bypassing templates entirely — this
// is the path a failed job or an ERROR-level log record takes, and it must
// not itself be able to fail on a missing template.
func (n *Notifier) NotifySysadmins(ctx context.Context, subject, body string) error {
	if len(n.cfg.Sysadmins) == 0 {
		return nil
	}
	email := &mailer.Email{
		To:      n.cfg.Sysadmins,
		Subject: "[SRCF] " + subject,
		Text:    body + "\n\n" + n.cfg.FooterText,
		HTML:    "<pre>" + sanitizer.StripHTML(body) + "</pre><p>" + n.cfg.FooterText + "</p>",
	}
	if err := n.mail.SendRaw(ctx, email); err != nil {
		return fmt.Errorf("notify: alert sysadmins: %w", err)
	}
	return nil
}
