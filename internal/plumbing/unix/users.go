package unix

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/user"
	"strconv"
	"strings"

	"github.com/srcf/controlplane/internal/task"
)

// noLoginShells lists the shells that mark an account as disabled, mirroring
// the two nologin binaries the original adduser wrapper recognises.
var noLoginShells = []string{"/bin/false", "/usr/sbin/nologin"}

// User is the subset of a passwd entry the control plane cares about.
type User struct {
	Name    string
	UID     int
	GID     int
	Gecos   string
	HomeDir string
	Shell   string
}

// GetUser looks up an existing account by username.
func GetUser(username string) (User, error) {
	u, err := user.Lookup(username)
	if err != nil {
		return User{}, err
	}
	return toUser(u)
}

func toUser(u *user.User) (User, error) {
	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return User{}, fmt.Errorf("unix: parse uid for %s: %w", u.Username, err)
	}
	gid, err := strconv.Atoi(u.Gid)
	if err != nil {
		return User{}, fmt.Errorf("unix: parse gid for %s: %w", u.Username, err)
	}
	shell, err := loginShell(u.Username)
	if err != nil {
		return User{}, err
	}
	return User{
		Name:    u.Username,
		UID:     uid,
		GID:     gid,
		Gecos:   u.Name,
		HomeDir: u.HomeDir,
		Shell:   shell,
	}, nil
}

// loginShell reads /etc/passwd directly, since os/user does not expose the
// login shell field.
func loginShell(username string) (string, error) {
	f, err := os.Open("/etc/passwd")
	if err != nil {
		return "", fmt.Errorf("unix: open /etc/passwd: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), ":")
		if len(fields) == 7 && fields[0] == username {
			return fields[6], nil
		}
	}
	return "", fmt.Errorf("unix: %s not found in /etc/passwd", username)
}

func isNoLoginShell(shell string) bool {
	for _, s := range noLoginShells {
		if shell == s {
			return true
		}
	}
	return false
}

// CreateUserOpts configures account creation.
type CreateUserOpts struct {
	UID      int // 0 means auto-assign
	System   bool
	Active   bool
	HomeDir  string
	RealName string
}

// createUser creates a new account via adduser. System users get no home
// directory; everything else inherits from /etc/skel unless HomeDir is set.
func createUser(ctx context.Context, username string, opts CreateUserOpts) (task.Result, error) {
	if err := task.RequireHost("unix.createUser", userHost); err != nil {
		return task.Result{}, err
	}
	if _, err := GetUser(username); err == nil {
		return task.Result{}, fmt.Errorf("unix: username %q is already in use", username)
	}

	args := []string{"--disabled-password", "--no-create-home"}
	if opts.UID != 0 {
		if existing, err := user.LookupId(strconv.Itoa(opts.UID)); err == nil {
			return task.Result{}, fmt.Errorf("unix: uid %d is already in use by %s", opts.UID, existing.Username)
		}
		args = append(args, "--uid", strconv.Itoa(opts.UID))
	}
	if opts.System {
		args = append(args, "--system", "--no-create-home")
	}
	if !opts.Active {
		args = append(args, "--shell", noLoginShells[0])
	}
	if opts.HomeDir != "" {
		args = append(args, "--home", opts.HomeDir)
	}
	if opts.RealName != "" {
		args = append(args, "--gecos", opts.RealName)
	}
	args = append(args, username)

	if _, err := run(ctx, "/usr/sbin/adduser", args...); err != nil {
		return task.Result{}, err
	}
	u, err := GetUser(username)
	if err != nil {
		return task.Result{}, err
	}
	if opts.System && opts.HomeDir != "" {
		if _, err := CreateHome(u, opts.HomeDir, false); err != nil {
			return task.Result{}, err
		}
	}
	return task.NewValue(task.Created, u), nil
}

// EnableUser switches an account's shell between bash (active) and a
// no-login shell (disabled).
func EnableUser(ctx context.Context, u User, active bool) (task.Result, error) {
	if err := task.RequireHost("unix.EnableUser", userHost); err != nil {
		return task.Result{}, err
	}
	login := !isNoLoginShell(u.Shell)
	switch {
	case login && !active:
		_, err := run(ctx, "/usr/bin/chsh", "--shell", "/bin/bash", u.Name)
		return task.New(task.Success), err
	case active && !login:
		_, err := run(ctx, "/usr/bin/chsh", "--shell", noLoginShells[0], u.Name)
		return task.New(task.Success), err
	default:
		return task.New(task.Unchanged), nil
	}
}

// SetRealName updates a user's GECOS real-name field.
func SetRealName(ctx context.Context, u User, realName string) (task.Result, error) {
	if err := task.RequireHost("unix.SetRealName", userHost); err != nil {
		return task.Result{}, err
	}
	current, _, _ := strings.Cut(u.Gecos, ",")
	if current == realName {
		return task.New(task.Unchanged), nil
	}
	_, err := run(ctx, "/usr/bin/chfn", "--full-name", realName, u.Name)
	return task.New(task.Success), err
}

// ResetPassword sets a user's password to a new random value, returning it
// so the caller can include it in a notification email.
func ResetPassword(ctx context.Context, u User) (task.Result, error) {
	if err := task.RequireHost("unix.ResetPassword", userHost); err != nil {
		return task.Result{}, err
	}
	passwd, err := task.NewPassword()
	if err != nil {
		return task.Result{}, err
	}
	line := passwd.Wrap(u.Name + ":%s")
	if _, err := runWithStdin(ctx, []byte(line.String()+"\n"), "/usr/sbin/chpasswd"); err != nil {
		return task.Result{}, err
	}
	return task.NewValue(task.Success, passwd), nil
}

// RenameUser changes a user's login name, used when scrubbing a deleted
// member's account to an anonymised `ex<kind><uid>` identifier. The UID,
// home directory, and group memberships are left untouched; only the name
// by which the account is addressed changes.
func RenameUser(ctx context.Context, u User, newName string) (task.Result, error) {
	if err := task.RequireHost("unix.RenameUser", userHost); err != nil {
		return task.Result{}, err
	}
	if u.Name == newName {
		return task.New(task.Unchanged), nil
	}
	if _, err := GetUser(newName); err == nil {
		return task.Result{}, fmt.Errorf("unix: username %q is already in use", newName)
	}
	_, err := run(ctx, "/usr/sbin/usermod", "--login", newName, u.Name)
	return task.New(task.Success), err
}

// SetDefaultGroup changes a user's primary group.
func SetDefaultGroup(ctx context.Context, u User, g Group) (task.Result, error) {
	if err := task.RequireHost("unix.SetDefaultGroup", userHost); err != nil {
		return task.Result{}, err
	}
	if u.GID == g.GID {
		return task.New(task.Unchanged), nil
	}
	_, err := run(ctx, "/usr/sbin/usermod", "--gid", strconv.Itoa(g.GID), u.Name)
	return task.New(task.Success), err
}

// SetHomeDir relocates a user's home directory entry.
func SetHomeDir(ctx context.Context, u User, home string) (task.Result, error) {
	if err := task.RequireHost("unix.SetHomeDir", userHost); err != nil {
		return task.Result{}, err
	}
	if u.HomeDir == home {
		return task.New(task.Unchanged), nil
	}
	_, err := run(ctx, "/usr/bin/usermod", "--home", home, u.Name)
	return task.New(task.Success), err
}

// CreateHome creates an empty home directory owned by the given user.
func CreateHome(u User, path string, worldRead bool) (task.Result, error) {
	mode := os.FileMode(0o2770)
	if worldRead {
		mode = 0o2775
	}

	state := task.Unchanged
	if err := os.Mkdir(path, mode); err != nil {
		if !os.IsExist(err) {
			return task.Result{}, fmt.Errorf("unix: create home %s: %w", path, err)
		}
	} else {
		state = task.Created
	}

	info, err := os.Stat(path)
	if err != nil {
		return task.Result{}, fmt.Errorf("unix: stat home %s: %w", path, err)
	}
	owned, err := ownedBy(info, u.UID, u.GID)
	if err != nil {
		return task.Result{}, err
	}
	if !owned {
		if err := nfsAwareChown(path, u.UID, u.GID); err != nil {
			return task.Result{}, err
		}
		if state == task.Unchanged {
			state = task.Success
		}
	}
	return task.New(state), nil
}

// EnsureUser creates a new account, or reconciles shell/home/gecos on an
// existing one, returning the resulting user either way.
func EnsureUser(ctx context.Context, username string, opts CreateUserOpts) (task.Result, error) {
	b := task.NewBuilder("unix.EnsureUser")

	u, err := GetUser(username)
	if err != nil {
		created, cerr := createUser(ctx, username, opts)
		if cerr != nil {
			return task.Result{}, cerr
		}
		return created, nil
	}

	if opts.UID != 0 && u.UID != opts.UID {
		return task.Result{}, fmt.Errorf("unix: user %q has uid %d, expected %d", username, u.UID, opts.UID)
	}

	enabled, err := EnableUser(ctx, u, opts.Active)
	if err != nil {
		return task.Result{}, err
	}
	b.Step(enabled)

	if opts.HomeDir != "" {
		homed, err := SetHomeDir(ctx, u, opts.HomeDir)
		if err != nil {
			return task.Result{}, err
		}
		b.Step(homed)
	}

	named, err := SetRealName(ctx, u, opts.RealName)
	if err != nil {
		return task.Result{}, err
	}
	b.Step(named)

	return b.BuildValue(u), nil
}
