package unix

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/srcf/controlplane/internal/task"
)

// aclAliases expands the shorthand permission letters used by job
// submitters into the underlying nfs4_setfacl permission-letter set.
var aclAliases = map[string]string{
	"R": "rntcy",
	"W": "watTNcCyD",
	"X": "xtcy",
}

// unaliasACL expands any alias letters in perms and returns the sorted,
// deduplicated set of resulting permission letters.
func unaliasACL(perms string) string {
	for alias, expansion := range aclAliases {
		perms = strings.ReplaceAll(perms, alias, expansion)
	}
	seen := make(map[rune]struct{}, len(perms))
	for _, r := range perms {
		seen[r] = struct{}{}
	}
	out := make([]rune, 0, len(seen))
	for r := range seen {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return string(out)
}

// GetNFSACL returns the effective (allowed minus denied) permission letters
// a principal holds on path, per `nfs4_getfacl`'s ACE listing.
func GetNFSACL(ctx context.Context, path, principal string) (string, error) {
	out, err := run(ctx, "/usr/bin/nfs4_getfacl", path)
	if err != nil {
		return "", err
	}

	allowed := make(map[rune]struct{})
	denied := make(map[rune]struct{})
	for _, line := range strings.Split(string(out), "\n") {
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.SplitN(line, ":", 4)
		if len(fields) != 4 {
			continue
		}
		aceType, principalField, perms := fields[0], fields[2], fields[3]
		if principalField != principal {
			continue
		}
		target := allowed
		if aceType == "D" {
			target = denied
		}
		for _, r := range perms {
			target[r] = struct{}{}
		}
	}

	var out2 []rune
	for r := range allowed {
		if _, denied := denied[r]; !denied {
			out2 = append(out2, r)
		}
	}
	sort.Slice(out2, func(i, j int) bool { return out2[i] < out2[j] })
	return string(out2), nil
}

func containsAll(have, want string) bool {
	haveSet := make(map[rune]struct{}, len(have))
	for _, r := range have {
		haveSet[r] = struct{}{}
	}
	for _, r := range want {
		if _, ok := haveSet[r]; !ok {
			return false
		}
	}
	return true
}

// SetNFSACL grants a principal the requested permissions on path, expanding
// any R/W/X aliases first. It is a no-op if the principal already holds a
// superset of the requested permissions.
func SetNFSACL(ctx context.Context, path, principal, perms string) (task.Result, error) {
	current, err := GetNFSACL(ctx, path, principal)
	if err != nil {
		return task.Result{}, err
	}
	want := unaliasACL(perms)
	if containsAll(current, want) {
		return task.New(task.Unchanged), nil
	}
	ace := fmt.Sprintf("A::%s:%s", principal, want)
	if _, err := run(ctx, "/usr/bin/nfs4_setfacl", "-a", ace, path); err != nil {
		return task.Result{}, err
	}
	return task.New(task.Success), nil
}
