// Package runner implements the single-process job dispatch loop: it
// claims the facility-wide advisory lock so only one runner is ever active
// against a given database, drains the backlog of jobs queued while it was
// offline, then waits on PostgreSQL LISTEN/NOTIFY for new arrivals, falling
// back to a periodic poll in case a notification is ever missed.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/srcf/controlplane/internal/jobs"
	"github.com/srcf/controlplane/internal/logging"
	"github.com/srcf/controlplane/internal/store"
	"github.com/srcf/controlplane/internal/tasks"
	"github.com/srcf/controlplane/pkg/id"
)

// lockNum is the pg_try_advisory_lock key the runner holds for its entire
// lifetime, guaranteeing at most one runner dispatches jobs against a given
// database at a time. Overridable by internal/config (and by tests, so
// concurrent test runs against the same database don't contend for the
// production lock).
var lockNum int64 = 0x366636F6E7472

// SetLockNum overrides the advisory lock key Run acquires.
func SetLockNum(n int64) { lockNum = n }

// notifyChannel is the channel the jobs_insert_notify trigger publishes to.
const notifyChannel = "jobs_insert"

// pollInterval is the backstop wake-up period: even with LISTEN/NOTIFY
// working perfectly, the runner re-checks the queue this often, so a
// trigger that silently failed to fire can never wedge it indefinitely.
const pollInterval = 600 * time.Second

// runnerIDString tags this runner's own log lines and email subjects with
// host and PID, matching the original's diagnostic string.
var runnerIDString = fmt.Sprintf("%s %d", hostname(), pid())

// ErrLocked is returned by Run when another runner already holds the
// advisory lock.
var ErrLocked = errors.New("runner: advisory lock held by another runner")

// Runner dispatches queued jobs one at a time, in the order they were
// created, from a dedicated connection holding the facility's advisory
// lock.
type Runner struct {
	pool *pgxpool.Pool
	deps tasks.Deps
	log  *slog.Logger
}

// New constructs a Runner. deps.DB must be the same pool the runner's
// dedicated listen connection is acquired from.
func New(pool *pgxpool.Pool, deps tasks.Deps, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{pool: pool, deps: deps, log: log}
}

// Run acquires the advisory lock and dispatches jobs until ctx is
// cancelled or the connection is lost. Callers should retry Run (with
// backoff) on a returned error other than context cancellation, since a
// dropped connection releases the advisory lock automatically.
func (r *Runner) Run(ctx context.Context) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("runner: acquire dedicated connection: %w", err)
	}
	defer conn.Release()

	var locked bool
	if err := conn.QueryRow(ctx, `SELECT pg_try_advisory_lock($1)`, int64(lockNum)).Scan(&locked); err != nil {
		return fmt.Errorf("runner: acquire advisory lock: %w", err)
	}
	if !locked {
		return ErrLocked
	}
	defer conn.QueryRow(ctx, `SELECT pg_advisory_unlock($1)`, int64(lockNum))

	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		return fmt.Errorf("runner: LISTEN %s: %w", notifyChannel, err)
	}

	r.log.Info("job runner started", "runner", runnerIDString)

	backlog, err := store.ListQueuedJobs(ctx, conn)
	if err != nil {
		return fmt.Errorf("runner: list queued jobs: %w", err)
	}
	for _, j := range backlog {
		r.runJob(ctx, j.JobID)
	}

	for {
		waitCtx, cancel := context.WithTimeout(ctx, pollInterval)
		notification, err := conn.Conn().WaitForNotification(waitCtx)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if !errors.Is(err, context.DeadlineExceeded) {
				return fmt.Errorf("runner: wait for notification: %w", err)
			}
			// Backstop poll: re-scan in case a notification was missed.
			queued, err := store.ListQueuedJobs(ctx, conn)
			if err != nil {
				return fmt.Errorf("runner: poll queued jobs: %w", err)
			}
			for _, j := range queued {
				r.runJob(ctx, j.JobID)
			}
			continue
		}
		var jobID int32
		if _, err := fmt.Sscanf(notification.Payload, "%d", &jobID); err != nil {
			r.log.Warn("malformed job notification payload", "payload", notification.Payload)
			continue
		}
		r.runJob(ctx, jobID)
	}
}

// runJob claims and executes a single job, logging and recording the
// outcome. Any error other than the job itself having moved on to a
// different state is treated as unexpected and escalated to the
// sysadmins.
func (r *Runner) runJob(ctx context.Context, jobID int32) {
	j, err := store.GetJob(ctx, r.deps.DB, jobID)
	if err != nil {
		r.log.Error("load job failed", "job_id", jobID, "error", err)
		return
	}
	if j.State != store.JobStateQueued {
		return
	}

	ctx = logging.WithJob(ctx, jobID)
	ctx = logging.WithTask(ctx, j.Type)
	ctx = logging.WithRunID(ctx, id.NewULID())

	startMsg := fmt.Sprintf("Running (host: %s)", runnerIDString)
	if err := store.SetJobState(ctx, r.deps.DB, jobID, store.JobStateQueued, store.JobStateRunning, &startMsg); err != nil {
		r.log.Warn("job claimed by another runner or withdrawn", "job_id", jobID, "error", err)
		return
	}
	_ = store.AppendJobLog(ctx, r.deps.DB, jobID, store.LogTypeStarted, store.LogLevelInfo, startMsg, nil)
	r.log.Info("job started", "job_id", jobID, "type", j.Type)

	result, runErr := dispatch(ctx, r.deps, j)

	if runErr == nil {
		msg := result.String()
		if msg == "" {
			msg = "Completed"
		}
		_ = store.AppendJobLog(ctx, r.deps.DB, jobID, store.LogTypeDone, store.LogLevelInfo, msg, nil)
		_ = store.SetJobState(ctx, r.deps.DB, jobID, store.JobStateRunning, store.JobStateDone, &msg)
		r.log.Info("job done", "job_id", jobID, "message", msg)
		return
	}

	var failed *jobs.Failed
	if errors.As(runErr, &failed) {
		msg := failed.Message
		if msg == "" {
			msg = "Aborted"
		}
		var raw *string
		if failed.Raw != "" {
			raw = &failed.Raw
		}
		_ = store.AppendJobLog(ctx, r.deps.DB, jobID, store.LogTypeFailed, store.LogLevelWarning, msg, raw)
		_ = store.SetJobState(ctx, r.deps.DB, jobID, store.JobStateRunning, store.JobStateFailed, &msg)
		r.log.Warn("job failed", "job_id", jobID, "message", msg)
		if r.deps.Notify != nil {
			body := msg
			if failed.Raw != "" {
				body = msg + "\n\n" + failed.Raw
			}
			_ = r.deps.Notify.NotifySysadmins(ctx, fmt.Sprintf("Job #%d failed", jobID), body)
		}
		return
	}

	// Unexpected error: the job record still needs to land in a terminal
	// state, but this is a control-plane bug, not the member's doing.
	exc := runErr.Error()
	_ = store.AppendJobLog(ctx, r.deps.DB, jobID, store.LogTypeFailed, store.LogLevelError, "Unhandled exception", &exc)
	_ = store.SetJobState(ctx, r.deps.DB, jobID, store.JobStateRunning, store.JobStateFailed, &exc)
	r.log.Error("job raised unexpected error", "job_id", jobID, "error", runErr)
	if r.deps.Notify != nil {
		_ = r.deps.Notify.NotifySysadmins(ctx, fmt.Sprintf("Job #%d failed", jobID), exc)
	}
}
