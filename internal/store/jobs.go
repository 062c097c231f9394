package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const jobColumns = `job_id, created_at, owner_crsid, type, state, state_message, args, environment`

func scanJob(row pgx.Row) (Job, error) {
	var j Job
	var hargs pgtype.Hstore
	err := row.Scan(&j.JobID, &j.CreatedAt, &j.OwnerCRSid, &j.Type, &j.State,
		&j.StateMessage, &hargs, &j.Environment)
	if errors.Is(err, pgx.ErrNoRows) {
		return Job{}, ErrNotFound
	}
	if err != nil {
		return Job{}, err
	}
	j.Args = decodeArgs(hargs)
	return j, nil
}

// GetJob looks up a job by ID.
func GetJob(ctx context.Context, q Querier, jobID int32) (Job, error) {
	row := q.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE job_id = $1`, jobID)
	return scanJob(row)
}

// CreateJob inserts a new job. Its initial state is unapproved unless
// autoApprove is set, in which case it starts queued and the runner's
// LISTEN trigger will pick it up immediately. CreateJob returns the
// assigned job ID.
func CreateJob(ctx context.Context, q Querier, ownerCRSid *string, jobType string, args map[string]string, environment *string, autoApprove bool) (int32, error) {
	state := JobStateUnapproved
	if autoApprove {
		state = JobStateQueued
	}
	var id int32
	err := q.QueryRow(ctx, `
		INSERT INTO jobs (owner_crsid, type, state, args, environment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING job_id`,
		ownerCRSid, jobType, state, encodeArgs(args), environment).Scan(&id)
	return id, err
}

// jobStateTransitions enumerates the state machine's legal edges. A
// transition not listed here is rejected by SetJobState.
var jobStateTransitions = map[JobState][]JobState{
	JobStateUnapproved: {JobStateQueued, JobStateWithdrawn},
	JobStateQueued:     {JobStateRunning, JobStateWithdrawn},
	JobStateRunning:    {JobStateDone, JobStateFailed},
	JobStateDone:       {JobStateQueued}, // retry/repeat re-enters the queue
	JobStateFailed:     {JobStateQueued}, // retry re-enters the queue
	JobStateWithdrawn:  {},
}

// ErrInvalidTransition is returned by SetJobState when the requested state
// change is not a legal edge of the job state machine.
var ErrInvalidTransition = errors.New("store: invalid job state transition")

// SetJobState advances a job to newState, enforcing the state machine.
// message, if non-empty, is recorded as the job's state_message (typically
// an approval/rejection note or a terse failure summary).
func SetJobState(ctx context.Context, q Querier, jobID int32, from, to JobState, message *string) error {
	allowed := jobStateTransitions[from]
	ok := false
	for _, s := range allowed {
		if s == to {
			ok = true
			break
		}
	}
	if !ok {
		return ErrInvalidTransition
	}

	tag, err := q.Exec(ctx, `
		UPDATE jobs SET state = $3, state_message = $4
		WHERE job_id = $1 AND state = $2`,
		jobID, from, to, message)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidTransition
	}
	return nil
}

// ListQueuedJobs returns queued jobs in FIFO order, the backlog a freshly
// started runner drains before it begins listening for notifications.
func ListQueuedJobs(ctx context.Context, q Querier) ([]Job, error) {
	rows, err := q.Query(ctx, `
		SELECT `+jobColumns+` FROM jobs WHERE state = 'queued' ORDER BY job_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// ListJobsForOwner returns every job ever submitted by a given CRSid, used
// to find the job history that needs scrubbing when that member's account
// is deleted.
func ListJobsForOwner(ctx context.Context, q Querier, ownerCRSid string) ([]Job, error) {
	rows, err := q.Query(ctx, `
		SELECT `+jobColumns+` FROM jobs WHERE owner_crsid = $1 ORDER BY job_id`, ownerCRSid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// ListJobsByArg returns every job whose args map has key set to value, used
// to find a society's job history (societies have no owner_crsid of their
// own to filter on, unlike members) when scrubbing sensitive data on
// deletion.
func ListJobsByArg(ctx context.Context, q Querier, key, value string) ([]Job, error) {
	rows, err := q.Query(ctx, `
		SELECT `+jobColumns+` FROM jobs WHERE args -> $1 = $2 ORDER BY job_id`, key, value)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// UpdateJobArgs overwrites a job's stored argument map, used to write back
// scrubbed (redacted) arguments once the job's owning entity is deleted.
func UpdateJobArgs(ctx context.Context, q Querier, jobID int32, args map[string]string) error {
	_, err := q.Exec(ctx, `UPDATE jobs SET args = $2 WHERE job_id = $1`, jobID, encodeArgs(args))
	return err
}

// AppendJobLog records one line of a job's audit trail.
func AppendJobLog(ctx context.Context, q Querier, jobID int32, typ LogType, level LogLevel, message string, raw *string) error {
	_, err := q.Exec(ctx, `
		INSERT INTO job_log (job_id, type, level, message, raw)
		VALUES ($1, $2, $3, $4, $5)`,
		jobID, typ, level, message, raw)
	return err
}

// ListJobLog returns every log entry for a job in chronological order.
func ListJobLog(ctx context.Context, q Querier, jobID int32) ([]JobLogEntry, error) {
	rows, err := q.Query(ctx, `
		SELECT log_id, job_id, time, type, level, message, raw
		FROM job_log WHERE job_id = $1 ORDER BY log_id`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []JobLogEntry
	for rows.Next() {
		var e JobLogEntry
		if err := rows.Scan(&e.LogID, &e.JobID, &e.Time, &e.Type, &e.Level, &e.Message, &e.Raw); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
