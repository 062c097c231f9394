package logging

import (
	"log/slog"
	"os"

	"github.com/srcf/controlplane/internal/store"
	"github.com/srcf/controlplane/pkg/logger"
)

// New builds the runner's logger: JSON to stdout, job-scoped records also
// appended to that job's log rows, and ERROR records also mailed to
// sysadmins. db and sysadmins may be nil (tests, or a sysadmin alert path
// not yet configured); either destination is simply left out.
func New(db store.Querier, sysadmins SysadminNotifier) *slog.Logger {
	handlers := []slog.Handler{
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
	}
	if db != nil {
		handlers = append(handlers, newStoreHandler(db))
	}
	if sysadmins != nil {
		handlers = append(handlers, newSysadminHandler(sysadmins))
	}

	combined := newMultiHandler(handlers...)
	return slog.New(logger.NewLogHandlerDecorator(combined, JobIDExtractor, TaskExtractor, RunIDExtractor))
}
