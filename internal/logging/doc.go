// Package logging builds the job runner's *slog.Logger, adapted from the
// teacher's pkg/logger: the same context-extracting decorator pattern and
// multi-handler fan-out, but with two destinations the teacher didn't
// have. A store-backed handler appends every record made inside a job's
// context to that job's log rows, the Go analogue of the original
// Python runner's handler that wrote straight into the `log` table.
// A sysadmin handler mails a one-line summary of every ERROR record,
// replacing pkg/logger's Sentry sink with the local SMTP alert this
// facility actually has.
package logging
