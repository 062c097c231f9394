package logging

import (
	"context"
	"fmt"
	"log/slog"
)

// SysadminNotifier is the minimal surface logging needs to raise an alert;
// satisfied by notify.Notifier without importing it directly, so this
// package depends only on an interface it owns.
type SysadminNotifier interface {
	NotifySysadmins(ctx context.Context, subject, body string) error
}

// sysadminHandler mails a one-line summary of every ERROR record, the
// direct replacement for pkg/logger's Sentry sink: instead of filing an
// issue in a dashboard nobody here runs, it emails the people who'd fix it.
type sysadminHandler struct {
	notify SysadminNotifier
}

func newSysadminHandler(notify SysadminNotifier) *sysadminHandler {
	return &sysadminHandler{notify: notify}
}

func (h *sysadminHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.notify != nil && level >= slog.LevelError
}

func (h *sysadminHandler) Handle(ctx context.Context, rec slog.Record) error {
	var attrs string
	rec.Attrs(func(a slog.Attr) bool {
		attrs += fmt.Sprintf("%s=%s ", a.Key, a.Value)
		return true
	})
	subject := rec.Message
	if task, ok := Task(ctx); ok {
		subject = fmt.Sprintf("%s: %s", task, rec.Message)
	}
	body := rec.Message
	if attrs != "" {
		body = fmt.Sprintf("%s\n\n%s", rec.Message, attrs)
	}
	// A failure to send the alert itself must never fail the log call.
	_ = h.notify.NotifySysadmins(context.WithoutCancel(ctx), subject, body)
	return nil
}

func (h *sysadminHandler) WithAttrs(attrs []slog.Attr) slog.Handler { return h }
func (h *sysadminHandler) WithGroup(name string) slog.Handler       { return h }
