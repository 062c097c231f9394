package bespoke

import (
	"context"
	"fmt"
	"path/filepath"
)

// archiveRoot is where deleted accounts' home directories and mail spools
// are tarred up for the retention period, before the originals are wiped.
// Overridable by tests.
var archiveRoot = "/archive"

// Archive tars and bzip2-compresses an owner's home directory into the
// dated archive tree, ahead of account deletion. The archive filename
// embeds the owner kind so members and societies never collide.
func Archive(ctx context.Context, kind OwnerKind, owner, homeDir, dateStamp string) (string, error) {
	dir := filepath.Join(archiveRoot, archiveSubdir(kind))
	name := fmt.Sprintf("%s-%s.tar.bz2", owner, dateStamp)
	dest := filepath.Join(dir, name)

	if _, err := run(ctx, "/bin/mkdir", "-p", dir); err != nil {
		return "", err
	}
	if _, err := run(ctx, "/bin/tar", "cjf", dest, "-C", filepath.Dir(homeDir), filepath.Base(homeDir)); err != nil {
		return "", fmt.Errorf("bespoke: archive %s: %w", homeDir, err)
	}
	return dest, nil
}

func archiveSubdir(kind OwnerKind) string {
	if kind == OwnerSociety {
		return "societies"
	}
	return "members"
}
