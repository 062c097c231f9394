package unix

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// netgroupPath is the flat file NIS builds its netgroup map from.
// Overridable by tests.
var netgroupPath = "/etc/netgroup"

// netgroupMember formats a bare username as a NIS netgroup triple, leaving
// the host and domain fields empty as the original facility's convention
// does (host-independent, any-domain membership).
func netgroupMember(user string) string {
	return fmt.Sprintf("(,%s,)", user)
}

// AddToNetgroup appends user to the named netgroup's member list, if not
// already present. name must already exist as a line in /etc/netgroup.
func AddToNetgroup(name, user string) (bool, error) {
	lines, err := readNetgroupLines()
	if err != nil {
		return false, err
	}
	member := netgroupMember(user)
	changed := false
	found := false
	for i, line := range lines {
		group, rest, ok := strings.Cut(line, " ")
		if !ok || group != name {
			continue
		}
		found = true
		members := strings.Fields(rest)
		for _, m := range members {
			if m == member {
				return false, nil
			}
		}
		lines[i] = line + " " + member
		changed = true
		break
	}
	if !found {
		lines = append(lines, name+" "+member)
		changed = true
	}
	if !changed {
		return false, nil
	}
	return true, writeNetgroupLines(lines)
}

// RemoveFromNetgroup removes user from the named netgroup's member list, if
// present.
func RemoveFromNetgroup(name, user string) (bool, error) {
	lines, err := readNetgroupLines()
	if err != nil {
		return false, err
	}
	member := netgroupMember(user)
	changed := false
	for i, line := range lines {
		group, rest, ok := strings.Cut(line, " ")
		if !ok || group != name {
			continue
		}
		members := strings.Fields(rest)
		kept := members[:0]
		for _, m := range members {
			if m == member {
				changed = true
				continue
			}
			kept = append(kept, m)
		}
		if changed {
			lines[i] = strings.TrimRight(group+" "+strings.Join(kept, " "), " ")
		}
		break
	}
	if !changed {
		return false, nil
	}
	return true, writeNetgroupLines(lines)
}

func readNetgroupLines() ([]string, error) {
	raw, err := os.ReadFile(netgroupPath)
	if err != nil {
		return nil, fmt.Errorf("unix: read %s: %w", netgroupPath, err)
	}
	trimmed := strings.TrimRight(string(raw), "\n")
	if trimmed == "" {
		return nil, nil
	}
	return strings.Split(trimmed, "\n"), nil
}

// writeNetgroupLines atomically rewrites /etc/netgroup via a temp file and
// rename, so a crash mid-write never leaves NIS's source file truncated.
func writeNetgroupLines(lines []string) error {
	content := strings.Join(lines, "\n") + "\n"
	dir := filepath.Dir(netgroupPath)
	tmp, err := os.CreateTemp(dir, ".tmp-netgroup-*")
	if err != nil {
		return fmt.Errorf("unix: create temp netgroup file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return fmt.Errorf("unix: write temp netgroup file: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("unix: chmod temp netgroup file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("unix: close temp netgroup file: %w", err)
	}
	if err := os.Rename(tmpPath, netgroupPath); err != nil {
		return fmt.Errorf("unix: rename into %s: %w", netgroupPath, err)
	}
	return nil
}
