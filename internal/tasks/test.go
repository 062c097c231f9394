package tasks

import (
	"context"
	"time"

	"github.com/srcf/controlplane/internal/jobs"
	"github.com/srcf/controlplane/internal/task"
)

// maxTestSleep caps a diagnostic test job's sleep time, so an operator
// probing the runner's concurrency can't accidentally wedge a worker slot
// for an unbounded duration.
const maxTestSleep = 40 * time.Second

// TestJob is the KindTest diagnostic handler: it sleeps for the requested
// duration (clamped to maxTestSleep) and succeeds, used to exercise the
// runner's dispatch and concurrency handling without touching any real
// facility state.
func TestJob(ctx context.Context, a jobs.TestArgs) (task.Result, error) {
	d := time.Duration(a.SleepTime) * time.Second
	if d > maxTestSleep {
		d = maxTestSleep
	}
	select {
	case <-time.After(d):
	case <-ctx.Done():
		return task.Result{}, ctx.Err()
	}
	return task.New(task.Success), nil
}
