package logging

import "context"

type contextKey int

const (
	jobIDKey contextKey = iota
	taskKey
	runIDKey
)

// WithJob attaches the id of the job currently being run to ctx, so every
// log record made while running it is also appended to that job's log.
func WithJob(ctx context.Context, jobID int32) context.Context {
	return context.WithValue(ctx, jobIDKey, jobID)
}

// JobID returns the job id attached by WithJob, if any.
func JobID(ctx context.Context) (int32, bool) {
	id, ok := ctx.Value(jobIDKey).(int32)
	return id, ok
}

// WithTask attaches the name of the tasks.* function currently running, for
// the "task" attribute the original Python runner attached via
// extra={"task": ...}.
func WithTask(ctx context.Context, task string) context.Context {
	return context.WithValue(ctx, taskKey, task)
}

// Task returns the task name attached by WithTask, if any.
func Task(ctx context.Context) (string, bool) {
	t, ok := ctx.Value(taskKey).(string)
	return t, ok
}

// WithRunID attaches a fresh correlation id for one dispatch of a job, so
// log lines from a retried job's earlier and later runs can be told apart
// even though both carry the same job id.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// RunID returns the correlation id attached by WithRunID, if any.
func RunID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(runIDKey).(string)
	return id, ok
}
