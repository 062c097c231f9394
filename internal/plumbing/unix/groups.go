package unix

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/user"
	"slices"
	"strconv"
	"strings"

	"github.com/srcf/controlplane/internal/task"
)

// Group is the subset of a group entry the control plane cares about.
type Group struct {
	Name    string
	GID     int
	Members []string
}

// GetGroup looks up an existing group by name.
func GetGroup(username string) (Group, error) {
	g, err := user.LookupGroup(username)
	if err != nil {
		return Group{}, err
	}
	gid, err := strconv.Atoi(g.Gid)
	if err != nil {
		return Group{}, fmt.Errorf("unix: parse gid for %s: %w", g.Name, err)
	}
	members, err := groupMembers(g.Name)
	if err != nil {
		return Group{}, err
	}
	return Group{Name: g.Name, GID: gid, Members: members}, nil
}

// groupMembers reads /etc/group directly since os/user does not expose
// membership lists.
func groupMembers(name string) ([]string, error) {
	f, err := os.Open("/etc/group")
	if err != nil {
		return nil, fmt.Errorf("unix: open /etc/group: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), ":")
		if len(fields) == 4 && fields[0] == name {
			if fields[3] == "" {
				return nil, nil
			}
			return strings.Split(fields[3], ","), nil
		}
	}
	return nil, fmt.Errorf("unix: group %s not found in /etc/group", name)
}

func createGroup(ctx context.Context, username string, gid int, system bool) (task.Result, error) {
	if err := task.RequireHost("unix.createGroup", userHost); err != nil {
		return task.Result{}, err
	}
	if _, err := GetGroup(username); err == nil {
		return task.Result{}, fmt.Errorf("unix: group name %q is already in use", username)
	}

	args := []string{}
	if gid != 0 {
		if existing, err := groupByGID(gid); err == nil {
			return task.Result{}, fmt.Errorf("unix: gid %d is already in use by %s", gid, existing)
		}
		args = append(args, "--gid", strconv.Itoa(gid))
	}
	if system {
		args = append(args, "--system")
	}
	args = append(args, username)

	if _, err := run(ctx, "/usr/sbin/addgroup", args...); err != nil {
		return task.Result{}, err
	}
	g, err := GetGroup(username)
	if err != nil {
		return task.Result{}, err
	}
	return task.NewValue(task.Created, g), nil
}

func groupByGID(gid int) (string, error) {
	g, err := user.LookupGroupId(strconv.Itoa(gid))
	if err != nil {
		return "", err
	}
	return g.Name, nil
}

// AddToGroup grants a user secondary membership of a group.
func AddToGroup(ctx context.Context, u User, g Group) (task.Result, error) {
	if err := task.RequireHost("unix.AddToGroup", userHost); err != nil {
		return task.Result{}, err
	}
	if slices.Contains(g.Members, u.Name) {
		return task.New(task.Unchanged), nil
	}
	_, err := run(ctx, "/usr/sbin/addgroup", u.Name, g.Name)
	return task.New(task.Success), err
}

// RemoveFromGroup revokes a user's secondary membership of a group.
func RemoveFromGroup(ctx context.Context, u User, g Group) (task.Result, error) {
	if err := task.RequireHost("unix.RemoveFromGroup", userHost); err != nil {
		return task.Result{}, err
	}
	if !slices.Contains(g.Members, u.Name) {
		return task.New(task.Unchanged), nil
	}
	_, err := run(ctx, "/usr/sbin/deluser", u.Name, g.Name)
	return task.New(task.Success), err
}

// RenameGroup changes a group's name, the group-side counterpart of
// RenameUser used when scrubbing a deleted member's or society's account.
func RenameGroup(ctx context.Context, g Group, newName string) (task.Result, error) {
	if err := task.RequireHost("unix.RenameGroup", userHost); err != nil {
		return task.Result{}, err
	}
	if g.Name == newName {
		return task.New(task.Unchanged), nil
	}
	if _, err := GetGroup(newName); err == nil {
		return task.Result{}, fmt.Errorf("unix: group name %q is already in use", newName)
	}
	_, err := run(ctx, "/usr/sbin/groupmod", "--new-name", newName, g.Name)
	return task.New(task.Success), err
}

// EnsureGroup creates a new group, or validates the GID of an existing one.
func EnsureGroup(ctx context.Context, username string, gid int, system bool) (task.Result, error) {
	g, err := GetGroup(username)
	if err != nil {
		return createGroup(ctx, username, gid, system)
	}
	if gid != 0 && g.GID != gid {
		return task.Result{}, fmt.Errorf("unix: group %q has gid %d, expected %d", username, g.GID, gid)
	}
	return task.NewValue(task.Unchanged, g), nil
}
