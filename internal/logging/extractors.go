package logging

import (
	"context"
	"log/slog"

	"github.com/srcf/controlplane/pkg/logger"
)

// JobIDExtractor pulls the running job's id out of context, per
// logger.ContextExtractor.
func JobIDExtractor(ctx context.Context) (slog.Attr, bool) {
	id, ok := JobID(ctx)
	if !ok {
		return slog.Attr{}, false
	}
	return slog.Int("job_id", int(id)), true
}

// TaskExtractor pulls the current tasks.* function name out of context.
func TaskExtractor(ctx context.Context) (slog.Attr, bool) {
	task, ok := Task(ctx)
	if !ok {
		return slog.Attr{}, false
	}
	return slog.String("task", task), true
}

// RunIDExtractor pulls the current dispatch's correlation id out of
// context.
func RunIDExtractor(ctx context.Context) (slog.Attr, bool) {
	runID, ok := RunID(ctx)
	if !ok {
		return slog.Attr{}, false
	}
	return slog.String("run_id", runID), true
}

var _ logger.ContextExtractor = JobIDExtractor
var _ logger.ContextExtractor = TaskExtractor
var _ logger.ContextExtractor = RunIDExtractor
