package tasks

import (
	"context"
	"fmt"
	"slices"

	"github.com/srcf/controlplane/internal/plumbing/sqlengine"
	"github.com/srcf/controlplane/internal/plumbing/sqlengine/mysqlplumb"
	"github.com/srcf/controlplane/internal/plumbing/sqlengine/pgplumb"
	"github.com/srcf/controlplane/internal/store"
	"github.com/srcf/controlplane/internal/task"
)

// SyncSocietyRoles reconciles grants on both SQL dialects against a
// society's current set of member admins: every admin with a matching SQL
// account is granted access to the society's role/database, every
// previously-granted account that is no longer an admin is revoked. Calling
// it twice in a row with no admin change is a no-op (Unchanged).
func SyncSocietyRoles(ctx context.Context, d Deps, society string) (task.Result, error) {
	b := task.NewBuilder("tasks.SyncSocietyRoles")

	admins, err := store.ListSocietyAdmins(ctx, d.DB, society)
	if err != nil {
		return task.Result{}, err
	}
	wanted := make([]string, 0, len(admins))
	for _, m := range admins {
		wanted = append(wanted, sqlengine.UserName(m.CRSid))
	}

	pgResult, err := syncPostgresRoles(ctx, d, society, wanted)
	if err != nil {
		return task.Result{}, fmt.Errorf("sync postgres roles: %w", err)
	}
	b.Step(pgResult)

	mysqlResult, err := syncMySQLGrants(ctx, d, society, wanted)
	if err != nil {
		return task.Result{}, fmt.Errorf("sync mysql grants: %w", err)
	}
	b.Step(mysqlResult)

	return b.Build(), nil
}

func syncPostgresRoles(ctx context.Context, d Deps, society string, wanted []string) (task.Result, error) {
	roleName := sqlengine.UserName(society)
	role, err := pgplumb.GetRole(ctx, d.PGCluster, roleName)
	if err != nil {
		// No postgres role provisioned for this society yet: nothing to sync.
		return task.New(task.Unchanged), nil
	}

	current, err := pgplumb.ListRoleMembers(ctx, d.PGCluster, role)
	if err != nil {
		return task.Result{}, err
	}

	b := task.NewBuilder("tasks.syncPostgresRoles")
	for _, name := range wanted {
		if slices.Contains(current, name) {
			continue
		}
		if _, err := pgplumb.GetRole(ctx, d.PGCluster, name); err != nil {
			continue // member has no postgres account to grant
		}
		result, err := pgplumb.GrantRole(ctx, d.PGCluster, name, role)
		if err != nil {
			return task.Result{}, err
		}
		b.Step(result)
	}
	for _, name := range current {
		if slices.Contains(wanted, name) {
			continue
		}
		result, err := pgplumb.RevokeRole(ctx, d.PGCluster, name, role)
		if err != nil {
			return task.Result{}, err
		}
		b.Step(result)
	}
	return b.Build(), nil
}

func syncMySQLGrants(ctx context.Context, d Deps, society string, wanted []string) (task.Result, error) {
	dbName := sqlengine.DatabaseName(society, "")
	databases, err := mysqlplumb.ListDatabases(ctx, d.MySQL, mysqlplumb.EscapeLike(dbName))
	if err != nil {
		return task.Result{}, err
	}
	if len(databases) == 0 {
		// No mysql database provisioned for this society yet: nothing to sync.
		return task.New(task.Unchanged), nil
	}

	current, err := mysqlplumb.ListDatabaseGrantees(ctx, d.MySQL, dbName)
	if err != nil {
		return task.Result{}, err
	}

	b := task.NewBuilder("tasks.syncMySQLGrants")
	for _, name := range wanted {
		if slices.Contains(current, name) {
			continue
		}
		result, err := mysqlplumb.GrantDatabase(ctx, d.MySQL, name, dbName)
		if err != nil {
			return task.Result{}, err
		}
		b.Step(result)
	}
	for _, name := range current {
		if slices.Contains(wanted, name) {
			continue
		}
		result, err := mysqlplumb.RevokeDatabase(ctx, d.MySQL, name, dbName)
		if err != nil {
			return task.Result{}, err
		}
		b.Step(result)
	}
	return b.Build(), nil
}
