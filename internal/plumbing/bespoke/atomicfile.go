package bespoke

import (
	"fmt"
	"os"
	"path/filepath"
)

// replaceFile atomically overwrites path with content by writing to a
// sibling temp file and renaming over the original, so a line-based editor
// crashing mid-write never leaves a half-written .forward or webstatus
// file behind. If uid/gid are non-negative, the temp file is chowned
// before the rename so ownership survives the swap.
func replaceFile(path string, content []byte, mode os.FileMode, uid, gid int) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("bespoke: create temp file for %s: %w", path, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once renamed

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("bespoke: write temp file for %s: %w", path, err)
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return fmt.Errorf("bespoke: chmod temp file for %s: %w", path, err)
	}
	if uid >= 0 && gid >= 0 {
		if err := tmp.Chown(uid, gid); err != nil {
			tmp.Close()
			return fmt.Errorf("bespoke: chown temp file for %s: %w", path, err)
		}
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("bespoke: close temp file for %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("bespoke: rename into %s: %w", path, err)
	}
	return nil
}
