package bespoke

import (
	"fmt"
	"os"
	"strings"

	"github.com/srcf/controlplane/internal/task"
)

// webStatusRoot holds the legacy per-owner-kind status files read by Apache's
// vhost-generation cron job. Overridable by tests.
var webStatusRoot = "/societies/srcf-admin"

// OwnerKind distinguishes the two webstatus files: one for personal sites,
// one for society sites.
type OwnerKind int

const (
	OwnerMember OwnerKind = iota
	OwnerSociety
)

func (k OwnerKind) fileName() string {
	if k == OwnerSociety {
		return "socwebstatus"
	}
	return "memberwebstatus"
}

// SetWebStatus records an owner's website type in the legacy webstatus file
// consumed by Apache vhost generation, updating an existing line in place or
// appending a new one.
func SetWebStatus(kind OwnerKind, username, status string) (task.Result, error) {
	path := webStatusRoot + "/" + kind.fileName()

	raw, err := os.ReadFile(path)
	if err != nil {
		return task.Result{}, fmt.Errorf("bespoke: read %s: %w", path, err)
	}

	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	found := false
	changed := false
	for i, line := range lines {
		name, current, ok := strings.Cut(line, ":")
		if !ok || name != username {
			continue
		}
		found = true
		if current != status {
			lines[i] = fmt.Sprintf("%s:%s", name, status)
			changed = true
		}
		break
	}
	if !found {
		lines = append(lines, fmt.Sprintf("%s:%s", username, status))
		changed = true
	}
	if !changed {
		return task.New(task.Unchanged), nil
	}

	out := strings.Join(lines, "\n") + "\n"
	if err := replaceFile(path, []byte(out), 0o644, -1, -1); err != nil {
		return task.Result{}, err
	}
	return task.New(task.Success), nil
}
