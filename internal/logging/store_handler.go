package logging

import (
	"context"
	"log/slog"

	"github.com/srcf/controlplane/internal/store"
)

// storeHandler appends every record made while a job is running to that
// job's log rows, so an operator reviewing a job afterwards sees the same
// detail the runner's own stdout logs carried.
type storeHandler struct {
	db    store.Querier
	level slog.Level
}

func newStoreHandler(db store.Querier) *storeHandler {
	return &storeHandler{db: db, level: slog.LevelDebug}
}

// Enabled reports true only inside a job's context — there is nowhere to
// write a log row otherwise.
func (h *storeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if level < h.level {
		return false
	}
	_, ok := JobID(ctx)
	return ok
}

func (h *storeHandler) Handle(ctx context.Context, rec slog.Record) error {
	jobID, ok := JobID(ctx)
	if !ok {
		return nil
	}

	var raw *string
	rec.Attrs(func(a slog.Attr) bool {
		if a.Key == "error" {
			s := a.Value.String()
			raw = &s
		}
		return true
	})

	return store.AppendJobLog(ctx, h.db, jobID, logType(rec.Level), logLevel(rec.Level), rec.Message, raw)
}

func (h *storeHandler) WithAttrs(attrs []slog.Attr) slog.Handler { return h }
func (h *storeHandler) WithGroup(name string) slog.Handler       { return h }

func logLevel(l slog.Level) store.LogLevel {
	switch {
	case l >= slog.LevelError:
		return store.LogLevelError
	case l >= slog.LevelWarn:
		return store.LogLevelWarning
	case l >= slog.LevelInfo:
		return store.LogLevelInfo
	default:
		return store.LogLevelDebug
	}
}

func logType(l slog.Level) store.LogType {
	if l >= slog.LevelError {
		return store.LogTypeFailed
	}
	return store.LogTypeProgress
}
