package bespoke

import (
	"context"
	"fmt"

	"github.com/srcf/controlplane/internal/task"
)

// GenerateApacheGroups regenerates the srcfmembers/srcfusers Apache groups
// file from the membership database.
func GenerateApacheGroups(ctx context.Context) (task.Result, error) {
	if _, err := run(ctx, "/usr/local/sbin/srcf-updateapachegroups"); err != nil {
		return task.Result{}, err
	}
	return task.New(task.Success), nil
}

// QueueListSubscription subscribes a member to one or more society mailing
// lists via the legacy enqueue script.
func QueueListSubscription(ctx context.Context, memberName, memberEmail string, lists ...string) (task.Result, error) {
	if len(lists) == 0 {
		return task.New(task.Unchanged), nil
	}
	entry := fmt.Sprintf("%q <%s>", memberName, memberEmail)
	args := []string{"/usr/local/sbin/srcf-enqueue-mlsub"}
	for _, name := range lists {
		args = append(args, fmt.Sprintf("soc-srcf-%s:%s", name, entry))
	}
	if _, err := run(ctx, args[0], args[1:]...); err != nil {
		return task.Result{}, err
	}
	return task.New(task.Success), nil
}

// GenerateSudoers regenerates the sudo rules letting society admins run
// commands under their society's account.
func GenerateSudoers(ctx context.Context) (task.Result, error) {
	if _, err := run(ctx, "/usr/local/sbin/srcf-generate-society-sudoers"); err != nil {
		return task.Result{}, err
	}
	return task.New(task.Success), nil
}

// ExportMembers regenerates the legacy flat-file membership lists.
func ExportMembers(ctx context.Context) (task.Result, error) {
	if _, err := run(ctx, "/usr/local/sbin/srcf-memberdb-export"); err != nil {
		return task.Result{}, err
	}
	return task.New(task.Success), nil
}

// GenerateApacheVhosts regenerates the per-domain Apache vhost config from
// the domains table, run whenever a vhost is added, changed, or removed.
func GenerateApacheVhosts(ctx context.Context) (task.Result, error) {
	if _, err := run(ctx, "/usr/local/sbin/srcf-generate-vhosts"); err != nil {
		return task.Result{}, err
	}
	return task.New(task.Success), nil
}

// yphost is the only host allowed to rebuild the NIS maps. Overridable at
// startup by internal/config.
var yphost = "pip"

// SetYPHost overrides the host NIS rebuilds are guarded to.
func SetYPHost(host string) { yphost = host }

// MakeYP synchronises UNIX accounts and passwords over NIS.
func MakeYP(ctx context.Context) (task.Result, error) {
	if err := task.RequireHost("bespoke.MakeYP", yphost); err != nil {
		return task.Result{}, err
	}
	if _, err := run(ctx, "/usr/bin/make", "-C", "/var/yp"); err != nil {
		return task.Result{}, err
	}
	return task.New(task.Success), nil
}

// ConfigureMailingList applies the facility's default options to a freshly
// created list and regenerates its mail aliases.
func ConfigureMailingList(ctx context.Context, name string) (task.Result, error) {
	if _, err := run(ctx, "/usr/sbin/config_list", "--inputfile", "/root/mailman-newlist-defaults", name); err != nil {
		return task.Result{}, err
	}
	if _, err := run(ctx, "/usr/local/sbin/gen_alias", name); err != nil {
		return task.Result{}, err
	}
	return task.New(task.Success), nil
}
