// Package mailman wraps the Mailman mailing-list management utilities:
// newlist, config_list and change_pw, each invoked via their command-line
// wrappers on the facility's authoritative list server.
package mailman

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/srcf/controlplane/internal/task"
)

// listHost is the server running Mailman with its utilities installed.
// Overridable at startup by internal/config.
var listHost = "pip"

// SetListHost overrides the host Mailman operations are guarded to.
func SetListHost(host string) { listHost = host }

// listsRoot is where Mailman stores its per-list state directories.
var listsRoot = "/var/lib/mailman/lists"

// reservedSuffixes collide with Mailman's own auto-generated addresses for
// a list (e.g. "foo-owner@..."), so a list name ending in one of these is
// rejected outright.
var reservedSuffixes = map[string]bool{
	"admin": true, "bounces": true, "confirm": true, "join": true, "leave": true,
	"owner": true, "request": true, "subscribe": true, "unsubscribe": true,
}

var listNamePattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

// List identifies an existing mailing list by name.
type List string

// GetList reports whether a list of the given name has been created.
func GetList(name string) (List, error) {
	info, err := os.Stat(filepath.Join(listsRoot, name))
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("mailman: list %q not found", name)
	}
	return List(name), nil
}

func validateListName(name string) error {
	if !listNamePattern.MatchString(name) {
		return fmt.Errorf("mailman: invalid list name %q", name)
	}
	suffix := name
	if idx := strings.LastIndexByte(name, '-'); idx >= 0 {
		suffix = name[idx+1:]
	}
	if reservedSuffixes[suffix] {
		return fmt.Errorf("mailman: list name %q suffixed with reserved keyword %q", name, suffix)
	}
	return nil
}

// NewList creates a new mailing list for the given owning email address.
func NewList(ctx context.Context, name, owner string) (task.Result, error) {
	if err := task.RequireHost("mailman.NewList", listHost); err != nil {
		return task.Result{}, err
	}
	if _, err := GetList(name); err == nil {
		return task.Result{}, fmt.Errorf("mailman: list %q already exists", name)
	}
	if err := validateListName(name); err != nil {
		return task.Result{}, err
	}
	passwd, err := task.NewPassword()
	if err != nil {
		return task.Result{}, err
	}
	if _, err := run(ctx, []byte(passwd.String()), "/usr/sbin/newlist", name, owner); err != nil {
		return task.Result{}, err
	}
	return task.NewValue(task.Created, passwd), nil
}

// SetOwner overwrites the owners of an existing list.
func SetOwner(ctx context.Context, mlist List, owners ...string) (task.Result, error) {
	if err := task.RequireHost("mailman.SetOwner", listHost); err != nil {
		return task.Result{}, err
	}
	data := "owner = " + pythonReprList(owners) + "\n"
	if _, err := run(ctx, []byte(data), "/usr/sbin/config_list", "--inputfile", "/dev/stdin", string(mlist)); err != nil {
		return task.Result{}, err
	}
	return task.New(task.Success), nil
}

// changePwPrefix is the line change_pw prints the new password on.
const changePwPrefix = "New List-Admin and List-Moderator password: "

// ResetPassword lets Mailman generate a fresh admin password for a list,
// returning it so the caller can include it in a notification email.
func ResetPassword(ctx context.Context, mlist List) (task.Result, error) {
	if err := task.RequireHost("mailman.ResetPassword", listHost); err != nil {
		return task.Result{}, err
	}
	out, err := run(ctx, nil, "/usr/lib/mailman/bin/change_pw", "--listname", string(mlist))
	if err != nil {
		return task.Result{}, err
	}
	for _, line := range strings.Split(string(out), "\n") {
		if after, ok := strings.CutPrefix(line, changePwPrefix); ok {
			passwd := task.NewPasswordFromValue(strings.TrimSpace(after))
			return task.NewValue(task.Success, passwd), nil
		}
	}
	return task.Result{}, fmt.Errorf("mailman: change_pw did not report a new password for %q", mlist)
}

// RemoveList deletes an existing mailing list, optionally along with its
// message archives.
func RemoveList(ctx context.Context, mlist List, removeArchive bool) (task.Result, error) {
	if err := task.RequireHost("mailman.RemoveList", listHost); err != nil {
		return task.Result{}, err
	}
	if _, err := GetList(string(mlist)); err != nil {
		return task.New(task.Unchanged), nil
	}
	args := []string{string(mlist)}
	if removeArchive {
		args = append([]string{"--archives"}, args...)
	}
	if _, err := run(ctx, nil, "/usr/sbin/rmlist", args...); err != nil {
		return task.Result{}, err
	}
	return task.New(task.Success), nil
}

// CreateList creates a new mailing list, or ensures the owner of an
// existing list matches owner.
func CreateList(ctx context.Context, name, owner string) (task.Result, error) {
	mlist, err := GetList(name)
	if err != nil {
		return NewList(ctx, name, owner)
	}
	result, err := SetOwner(ctx, mlist, owner)
	if err != nil {
		return task.Result{}, err
	}
	return task.NewValue(result.State(), mlist), nil
}

// pythonReprList renders a string slice the way Python's repr(list(...))
// would, since config_list's --inputfile expects a literal Python
// assignment statement.
func pythonReprList(items []string) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, item := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('\'')
		b.WriteString(strings.ReplaceAll(item, "'", `\'`))
		b.WriteByte('\'')
	}
	b.WriteByte(']')
	return b.String()
}
