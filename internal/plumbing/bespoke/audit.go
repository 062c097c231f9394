package bespoke

import (
	"fmt"
	"os"

	"github.com/srcf/controlplane/internal/task"
)

// auditLogPath is the flat append-only log of every administrative action
// the control plane has ever taken, kept alongside the job database as a
// belt-and-braces record for operators doing incident forensics.
var auditLogPath = "/var/log/srcf/admin-actions.log"

// LogToFile appends a single timestamped line to the administrative audit
// log. It never fails the calling job: a write error here is logged but
// tolerated, since the job's own database row is the authoritative record.
func LogToFile(timestamp, actor, action string) task.Result {
	line := fmt.Sprintf("%s %s %s\n", timestamp, actor, action)
	f, err := os.OpenFile(auditLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return task.New(task.Unchanged)
	}
	defer f.Close()
	if _, err := f.WriteString(line); err != nil {
		return task.New(task.Unchanged)
	}
	return task.New(task.Success)
}
