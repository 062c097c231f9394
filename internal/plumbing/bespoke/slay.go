package bespoke

import (
	"context"

	"github.com/srcf/controlplane/internal/task"
)

// SlayUser kills every process owned by username, used when cancelling or
// deleting a member so a lingering session can't keep writing to a home
// directory that's about to be archived and removed. pkill exits non-zero
// when there was nothing to kill, which is not itself an error here.
func SlayUser(ctx context.Context, username string) (task.Result, error) {
	out, err := run(ctx, "/usr/bin/pkill", "-KILL", "-u", username)
	if err != nil {
		if len(out) == 0 {
			return task.New(task.Unchanged), nil
		}
		return task.Result{}, err
	}
	return task.New(task.Success), nil
}
