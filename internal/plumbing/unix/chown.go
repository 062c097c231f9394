package unix

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"
)

// nfsfsPath is where the kernel publishes mounted NFS servers; overridable
// by tests.
var nfsfsPath = "/proc/net/nfsfs"

// ownedBy reports whether info's owning uid/gid already match.
func ownedBy(info os.FileInfo, uid, gid int) (bool, error) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return false, fmt.Errorf("unix: stat_t not supported on this platform")
	}
	return int(stat.Uid) == uid && int(stat.Gid) == gid, nil
}

// nfsAwareChown changes ownership of a path, retrying once on EINVAL: NFS
// servers occasionally reject a chown issued immediately after a uid/gid
// allocation, before the new identity has propagated over NIS. If the
// retry also fails, the error is annotated with the NFS server(s) the
// kernel currently has mounted, since a stuck EINVAL here almost always
// means one of them hasn't picked up the new passwd/group map yet.
func nfsAwareChown(path string, uid, gid int) error {
	err := os.Chown(path, uid, gid)
	if err == nil {
		return nil
	}
	var pathErr *os.PathError
	if errors.As(err, &pathErr) && errors.Is(pathErr.Err, syscall.EINVAL) {
		if retryErr := os.Chown(path, uid, gid); retryErr == nil {
			return nil
		} else {
			return fmt.Errorf("unix: chown %s: %w (mounted NFS servers: %s)", path, retryErr, nfsServers())
		}
	}
	return fmt.Errorf("unix: chown %s: %w", path, err)
}

// nfsServers reads the list of currently mounted NFS server hostnames from
// /proc/net/nfsfs, for inclusion in chown failure diagnostics.
func nfsServers() string {
	f, err := os.Open(nfsfsPath)
	if err != nil {
		return "unknown"
	}
	defer f.Close()

	seen := map[string]bool{}
	var servers []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		host, _, ok := strings.Cut(fields[1], ":")
		if !ok {
			continue
		}
		if !seen[host] {
			seen[host] = true
			servers = append(servers, host)
		}
	}
	if len(servers) == 0 {
		return "none found"
	}
	return strings.Join(servers, ", ")
}
