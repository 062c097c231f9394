package tasks

import (
	"context"
	"fmt"

	"github.com/srcf/controlplane/internal/jobs"
	"github.com/srcf/controlplane/internal/plumbing/bespoke"
	"github.com/srcf/controlplane/internal/store"
	"github.com/srcf/controlplane/internal/task"
)

func vhostClass(society string) store.DomainClass {
	if society != "" {
		return store.DomainClassSociety
	}
	return store.DomainClassUser
}

func vhostOwner(society, crsid string) string {
	if society != "" {
		return society
	}
	return crsid
}

// AddUserVhost registers a new domain pointing at a member's own web root.
func AddUserVhost(ctx context.Context, d Deps, crsid string, a jobs.VhostArgs) (task.Result, error) {
	return addVhost(ctx, d, "", crsid, a)
}

// AddSocietyVhost registers a new domain pointing at a society's web root.
func AddSocietyVhost(ctx context.Context, d Deps, society string, a jobs.VhostArgs) (task.Result, error) {
	return addVhost(ctx, d, society, "", a)
}

func addVhost(ctx context.Context, d Deps, society, crsid string, a jobs.VhostArgs) (task.Result, error) {
	b := task.NewBuilder("tasks.addVhost")

	var root *string
	if a.Root != "" {
		root = &a.Root
	}
	id, err := store.CreateDomain(ctx, d.DB, store.Domain{
		Class:  vhostClass(society),
		Owner:  vhostOwner(society, crsid),
		Domain: a.Domain,
		Root:   root,
	})
	if err != nil {
		return task.Result{}, fmt.Errorf("register vhost: %w", err)
	}
	b.Step(task.NewValue(task.Created, id))

	genResult, err := bespoke.GenerateApacheVhosts(ctx)
	if err != nil {
		return task.Result{}, err
	}
	b.Step(genResult)

	return b.Build(), nil
}

// ChangeUserVhostDocroot changes the web root a member's existing domain
// serves from.
func ChangeUserVhostDocroot(ctx context.Context, d Deps, crsid string, a jobs.VhostArgs) (task.Result, error) {
	return changeVhostDocroot(ctx, d, "", crsid, a)
}

// ChangeSocietyVhostDocroot changes the web root a society's existing
// domain serves from.
func ChangeSocietyVhostDocroot(ctx context.Context, d Deps, society string, a jobs.VhostArgs) (task.Result, error) {
	return changeVhostDocroot(ctx, d, society, "", a)
}

func changeVhostDocroot(ctx context.Context, d Deps, society, crsid string, a jobs.VhostArgs) (task.Result, error) {
	b := task.NewBuilder("tasks.changeVhostDocroot")

	domains, err := store.ListDomainsForOwner(ctx, d.DB, vhostClass(society), vhostOwner(society, crsid))
	if err != nil {
		return task.Result{}, err
	}
	dom, err := findDomain(domains, a.Domain)
	if err != nil {
		return task.Result{}, err
	}

	var root *string
	if a.Root != "" {
		root = &a.Root
	}
	if err := store.UpdateDomainRoot(ctx, d.DB, dom.ID, root); err != nil {
		return task.Result{}, fmt.Errorf("update vhost root: %w", err)
	}
	b.Step(task.New(task.Success))

	genResult, err := bespoke.GenerateApacheVhosts(ctx)
	if err != nil {
		return task.Result{}, err
	}
	b.Step(genResult)

	return b.Build(), nil
}

// RemoveUserVhost deregisters one of a member's domains.
func RemoveUserVhost(ctx context.Context, d Deps, crsid string, a jobs.VhostArgs) (task.Result, error) {
	return removeVhost(ctx, d, "", crsid, a)
}

// RemoveSocietyVhost deregisters one of a society's domains.
func RemoveSocietyVhost(ctx context.Context, d Deps, society string, a jobs.VhostArgs) (task.Result, error) {
	return removeVhost(ctx, d, society, "", a)
}

func removeVhost(ctx context.Context, d Deps, society, crsid string, a jobs.VhostArgs) (task.Result, error) {
	b := task.NewBuilder("tasks.removeVhost")

	domains, err := store.ListDomainsForOwner(ctx, d.DB, vhostClass(society), vhostOwner(society, crsid))
	if err != nil {
		return task.Result{}, err
	}
	dom, err := findDomain(domains, a.Domain)
	if err != nil {
		return task.Result{}, err
	}

	if err := store.DeleteDomain(ctx, d.DB, dom.ID); err != nil {
		return task.Result{}, fmt.Errorf("remove vhost: %w", err)
	}
	b.Step(task.New(task.Success))

	genResult, err := bespoke.GenerateApacheVhosts(ctx)
	if err != nil {
		return task.Result{}, err
	}
	b.Step(genResult)

	return b.Build(), nil
}

func findDomain(domains []store.Domain, name string) (store.Domain, error) {
	for _, dom := range domains {
		if dom.Domain == name {
			return dom, nil
		}
	}
	return store.Domain{}, fmt.Errorf("no registered vhost for domain %q", name)
}
