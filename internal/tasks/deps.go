// Package tasks composes the plumbing primitives in internal/plumbing and
// internal/store into the end-to-end workflows the job runner executes:
// member/society provisioning, admin membership changes, SQL role
// synchronisation, password resets, and account cancellation/deletion.
//
// Every exported function returns a task.Result tree and an error; a
// non-nil error is either a *task.ErrWrongHost, a JobFailed-equivalent
// (returned as a plain error, logged as the job's failure message), or an
// unexpected error that the runner logs with a stack trace and escalates
// to the sysadmins.
package tasks

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Notifier sends a templated email to a member or society, decoupling
// this package from the concrete mail transport in internal/notify.
type Notifier interface {
	NotifyMember(ctx context.Context, crsid, subject, template string, data map[string]any) error
	NotifySociety(ctx context.Context, society, subject, template string, data map[string]any) error
	NotifySysadmins(ctx context.Context, subject, body string) error
}

// Deps bundles every external dependency a task needs, threaded in
// explicitly rather than held in package-level state so tests can swap in
// fakes and so multiple pools/notifiers never leak across goroutines.
type Deps struct {
	// DB is the control-plane database: members, societies, domains, jobs.
	DB *pgxpool.Pool
	// PGCluster is the administrative connection used for role and
	// database DDL against the member/society PostgreSQL cluster. In
	// production this is the same server as DB but a distinct pool, since
	// CREATE/DROP DATABASE must run outside of any transaction DB might
	// have open.
	PGCluster *pgxpool.Pool
	// MySQL is the administrative connection to the member/society MySQL
	// server, opened via mysqlplumb.ConnectConfigFile.
	MySQL *sql.DB

	Notify Notifier
}
