package tasks

import (
	"context"
	"fmt"

	"github.com/srcf/controlplane/internal/plumbing/sqlengine"
	"github.com/srcf/controlplane/internal/plumbing/sqlengine/mysqlplumb"
	"github.com/srcf/controlplane/internal/plumbing/sqlengine/pgplumb"
	"github.com/srcf/controlplane/internal/task"
)

// sqlOwner resolves the database account/database name and notification
// target for a user- or society-scoped database job.
func sqlOwner(society, crsid string) (owner string, notifyFn func(ctx context.Context, d Deps, subject, template string, data map[string]any) error) {
	if society != "" {
		owner = society
		notifyFn = func(ctx context.Context, d Deps, subject, template string, data map[string]any) error {
			if d.Notify == nil {
				return nil
			}
			return d.Notify.NotifySociety(ctx, society, subject, template, data)
		}
		return
	}
	owner = crsid
	notifyFn = func(ctx context.Context, d Deps, subject, template string, data map[string]any) error {
		if d.Notify == nil {
			return nil
		}
		return d.Notify.NotifyMember(ctx, crsid, subject, template, data)
	}
	return
}

// CreateMySQLUserDatabase provisions a member's MySQL account and primary
// database, emailing the generated password.
func CreateMySQLUserDatabase(ctx context.Context, d Deps, crsid string) (task.Result, error) {
	return createMySQLDatabase(ctx, d, "", crsid)
}

// CreateMySQLSocietyDatabase provisions a society's MySQL account and
// primary database, emailing the generated password to its admins.
func CreateMySQLSocietyDatabase(ctx context.Context, d Deps, society string) (task.Result, error) {
	return createMySQLDatabase(ctx, d, society, "")
}

func createMySQLDatabase(ctx context.Context, d Deps, society, crsid string) (task.Result, error) {
	b := task.NewBuilder("tasks.createMySQLDatabase")
	owner, notify := sqlOwner(society, crsid)
	name := sqlengine.UserName(owner)
	dbName := sqlengine.DatabaseName(owner, "")

	userResult, err := mysqlplumb.CreateUser(ctx, d.MySQL, name)
	if err != nil {
		return task.Result{}, fmt.Errorf("create mysql user: %w", err)
	}
	b.Step(userResult)
	passwd, hasPasswd := userResult.Value().(task.Password)

	dbResult, err := mysqlplumb.CreateDatabase(ctx, d.MySQL, dbName)
	if err != nil {
		return task.Result{}, fmt.Errorf("create mysql database: %w", err)
	}
	b.Step(dbResult)

	grantResult, err := mysqlplumb.GrantDatabase(ctx, d.MySQL, name, dbName)
	if err != nil {
		return task.Result{}, fmt.Errorf("grant mysql database: %w", err)
	}
	b.Step(grantResult)

	if hasPasswd {
		if err := notify(ctx, d, "Your MySQL database is ready", "mysql-create", map[string]any{
			"username": name, "database": dbName, "password": passwd.String(),
		}); err != nil {
			return task.Result{}, err
		}
	}
	return b.Build(), nil
}

// ResetMySQLUserPassword generates a new MySQL password for a member's
// account and emails it to them.
func ResetMySQLUserPassword(ctx context.Context, d Deps, crsid string) (task.Result, error) {
	return resetMySQLPassword(ctx, d, "", crsid)
}

// ResetMySQLSocietyPassword generates a new MySQL password for a society's
// account and emails it to its admins.
func ResetMySQLSocietyPassword(ctx context.Context, d Deps, society string) (task.Result, error) {
	return resetMySQLPassword(ctx, d, society, "")
}

func resetMySQLPassword(ctx context.Context, d Deps, society, crsid string) (task.Result, error) {
	owner, notify := sqlOwner(society, crsid)
	name := sqlengine.UserName(owner)

	result, err := mysqlplumb.ResetPassword(ctx, d.MySQL, name)
	if err != nil {
		return task.Result{}, fmt.Errorf("reset mysql password: %w", err)
	}
	passwd, _ := result.Value().(task.Password)
	if err := notify(ctx, d, "Your MySQL password has been reset", "mysql-reset-password", map[string]any{
		"username": name, "password": passwd.String(),
	}); err != nil {
		return task.Result{}, err
	}
	return result, nil
}

// CreatePostgresUserDatabase provisions a member's PostgreSQL role and
// primary database, emailing the generated password.
func CreatePostgresUserDatabase(ctx context.Context, d Deps, crsid string) (task.Result, error) {
	return createPostgresDatabase(ctx, d, "", crsid)
}

// CreatePostgresSocietyDatabase provisions a society's PostgreSQL role and
// primary database, emailing the generated password to its admins.
func CreatePostgresSocietyDatabase(ctx context.Context, d Deps, society string) (task.Result, error) {
	return createPostgresDatabase(ctx, d, society, "")
}

func createPostgresDatabase(ctx context.Context, d Deps, society, crsid string) (task.Result, error) {
	b := task.NewBuilder("tasks.createPostgresDatabase")
	owner, notify := sqlOwner(society, crsid)
	name := sqlengine.UserName(owner)
	dbName := sqlengine.DatabaseName(owner, "")

	userResult, err := pgplumb.CreateUser(ctx, d.PGCluster, name)
	if err != nil {
		return task.Result{}, fmt.Errorf("create postgres role: %w", err)
	}
	b.Step(userResult)
	passwd, hasPasswd := userResult.Value().(task.Password)

	role, err := pgplumb.GetRole(ctx, d.PGCluster, name)
	if err != nil {
		return task.Result{}, fmt.Errorf("look up postgres role: %w", err)
	}

	dbResult, err := pgplumb.CreateDatabase(ctx, d.PGCluster, dbName, role)
	if err != nil {
		return task.Result{}, fmt.Errorf("create postgres database: %w", err)
	}
	b.Step(dbResult)

	if hasPasswd {
		if err := notify(ctx, d, "Your PostgreSQL database is ready", "postgres-create", map[string]any{
			"username": name, "database": dbName, "password": passwd.String(),
		}); err != nil {
			return task.Result{}, err
		}
	}
	return b.Build(), nil
}

// ResetPostgresUserPassword generates a new PostgreSQL password for a
// member's role and emails it to them.
func ResetPostgresUserPassword(ctx context.Context, d Deps, crsid string) (task.Result, error) {
	return resetPostgresPassword(ctx, d, "", crsid)
}

// ResetPostgresSocietyPassword generates a new PostgreSQL password for a
// society's role and emails it to its admins.
func ResetPostgresSocietyPassword(ctx context.Context, d Deps, society string) (task.Result, error) {
	return resetPostgresPassword(ctx, d, society, "")
}

func resetPostgresPassword(ctx context.Context, d Deps, society, crsid string) (task.Result, error) {
	owner, notify := sqlOwner(society, crsid)
	name := sqlengine.UserName(owner)

	result, err := pgplumb.ResetPassword(ctx, d.PGCluster, name)
	if err != nil {
		return task.Result{}, fmt.Errorf("reset postgres password: %w", err)
	}
	passwd, _ := result.Value().(task.Password)
	if err := notify(ctx, d, "Your PostgreSQL password has been reset", "postgres-reset-password", map[string]any{
		"username": name, "password": passwd.String(),
	}); err != nil {
		return task.Result{}, err
	}
	return result, nil
}
