package bespoke

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/srcf/controlplane/internal/plumbing/unix"
	"github.com/srcf/controlplane/internal/task"
)

// LinkSocietyHomeDir adds or removes a member's symlink to a society's home
// directory under their own home directory, reflecting their current admin
// membership.
func LinkSocietyHomeDir(member unix.User, society string, isAdmin bool) (task.Result, error) {
	link := filepath.Join(member.HomeDir, society)
	target := filepath.Join("/societies", society)

	current, err := os.Readlink(link)
	valid := err == nil && current == target

	if valid == isAdmin {
		return task.New(task.Unchanged), nil
	}

	if isAdmin {
		if err := os.Symlink(target, link); err != nil {
			if errors.Is(err, os.ErrExist) {
				return task.Result{}, fmt.Errorf("bespoke: not overwriting existing file %s", link)
			}
			return task.Result{}, fmt.Errorf("bespoke: symlink %s: %w", link, err)
		}
	} else {
		if err := os.Remove(link); err != nil {
			return task.Result{}, fmt.Errorf("bespoke: remove symlink %s: %w", link, err)
		}
	}
	return task.New(task.Success), nil
}

// eximUID is looked up lazily so tests can stub it without requiring a real
// Debian-exim system account to exist.
var lookupEximUID = func() (int, error) {
	u, err := unix.GetUser("Debian-exim")
	if err != nil {
		return 0, fmt.Errorf("bespoke: look up Debian-exim: %w", err)
	}
	return u.UID, nil
}

// SetHomeEximACL grants the Exim user execute access on a home directory so
// it can traverse into it and read .forward, without granting read/write
// on the directory's other contents.
func SetHomeEximACL(ctx context.Context, homeDir string) (task.Result, error) {
	eximUID, err := lookupEximUID()
	if err != nil {
		return task.Result{}, err
	}
	entry := fmt.Sprintf("u:%d:x", eximUID)
	if _, err := run(ctx, "/usr/bin/setfacl", "-m", entry, homeDir); err != nil {
		return task.Result{}, err
	}
	return task.New(task.Success), nil
}

// CreateForwardingFile writes a default .forward file pointing mail at the
// owner's external address.
func CreateForwardingFile(u unix.User, email string) (task.Result, error) {
	path := filepath.Join(u.HomeDir, ".forward")
	if err := replaceFile(path, []byte(email+"\n"), 0o640, u.UID, u.GID); err != nil {
		return task.Result{}, err
	}
	return task.New(task.Success), nil
}

// SetQuota applies the facility's default disk quota to an account.
func SetQuota(ctx context.Context, username string) (task.Result, error) {
	if _, err := run(ctx, "/usr/local/sbin/set_quota", username); err != nil {
		return task.Result{}, err
	}
	return task.New(task.Success), nil
}
