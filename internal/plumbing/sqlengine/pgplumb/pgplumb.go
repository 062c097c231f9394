// Package pgplumb implements the PostgreSQL dialect of the shared SQL
// plumbing shape: role and database primitives used to provision a
// member's or society's PostgreSQL account, run against the cluster's
// administrative connection.
package pgplumb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/srcf/controlplane/internal/plumbing/sqlengine"
	"github.com/srcf/controlplane/internal/task"
)

// pgErrorCode extracts a PostgreSQL SQLSTATE from err, if it carries one.
func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

const (
	sqlstateDuplicateObject   = "42710" // role already exists
	sqlstateDuplicateDatabase = "42P04" // database already exists
	sqlstateInvalidCatalog    = "3D000" // database does not exist
	sqlstateUndefinedObject   = "42704" // role does not exist
)

// Role describes a PostgreSQL role as reported by pg_roles.
type Role struct {
	Name     string
	CanLogin bool
}

// GetRole looks up a single role by name.
func GetRole(ctx context.Context, q pgConn, name string) (Role, error) {
	var r Role
	err := q.QueryRow(ctx, `SELECT rolname, rolcanlogin FROM pg_roles WHERE rolname = $1`, name).
		Scan(&r.Name, &r.CanLogin)
	if errors.Is(err, pgx.ErrNoRows) {
		return Role{}, sqlengine.ErrNotFound
	}
	return r, err
}

// GetUserRoles lists every role the named role is transitively a member of.
func GetUserRoles(ctx context.Context, q pgConn, name string) ([]Role, error) {
	rows, err := q.Query(ctx, `
		SELECT rolname, rolcanlogin FROM pg_roles
		WHERE pg_has_role($1, oid, 'member')`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Role
	for rows.Next() {
		var r Role
		if err := rows.Scan(&r.Name, &r.CanLogin); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListRoleMembers returns the login roles currently granted membership of
// role, the set a society role's sync operation diffs against the current
// admin list.
func ListRoleMembers(ctx context.Context, q pgConn, role Role) ([]string, error) {
	rows, err := q.Query(ctx, `
		SELECT m.rolname FROM pg_auth_members am
		JOIN pg_roles m ON m.oid = am.member
		JOIN pg_roles r ON r.oid = am.roleid
		WHERE r.rolname = $1`, role.Name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// pgConn is satisfied by *pgxpool.Pool and pgx.Tx/pgx.Conn.
type pgConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// quoteIdent double-quotes a PostgreSQL identifier, escaping any embedded
// double quotes, so role and database names with hyphens or other special
// characters round-trip safely.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// CreateUser creates a role with a random password and no database/user
// creation privileges, if it does not already exist. Returns Unchanged (and
// no password) if the role is already present.
func CreateUser(ctx context.Context, q pgConn, name string) (task.Result, error) {
	passwd, err := task.NewPassword()
	if err != nil {
		return task.Result{}, err
	}
	sql := fmt.Sprintf(`CREATE USER %s ENCRYPTED PASSWORD '%%s' NOCREATEDB NOCREATEROLE`, quoteIdent(name))
	_, err = q.Exec(ctx, fmt.Sprintf(sql, passwd.String()))
	if err != nil {
		if pgErrorCode(err) == sqlstateDuplicateObject {
			return task.New(task.Unchanged), nil
		}
		return task.Result{}, err
	}
	return task.NewValue(task.Created, passwd), nil
}

// ResetPassword sets a new random password on an existing role.
func ResetPassword(ctx context.Context, q pgConn, name string) (task.Result, error) {
	passwd, err := task.NewPassword()
	if err != nil {
		return task.Result{}, err
	}
	sql := fmt.Sprintf(`ALTER USER %s PASSWORD '%%s'`, quoteIdent(name))
	if _, err := q.Exec(ctx, fmt.Sprintf(sql, passwd.String())); err != nil {
		if pgErrorCode(err) == sqlstateUndefinedObject {
			return task.Result{}, sqlengine.ErrNotFound
		}
		return task.Result{}, err
	}
	return task.NewValue(task.Success, passwd), nil
}

// DropUser drops a role and all of its grants.
func DropUser(ctx context.Context, q pgConn, name string) (task.Result, error) {
	_, err := q.Exec(ctx, fmt.Sprintf(`DROP USER IF EXISTS %s`, quoteIdent(name)))
	if err != nil {
		return task.Result{}, err
	}
	return task.New(task.Success), nil
}

// EnableRole grants the LOGIN privilege, if the role doesn't already have it.
func EnableRole(ctx context.Context, q pgConn, role Role) (task.Result, error) {
	if role.CanLogin {
		return task.New(task.Unchanged), nil
	}
	_, err := q.Exec(ctx, fmt.Sprintf(`ALTER ROLE %s LOGIN`, quoteIdent(role.Name)))
	return task.New(task.Success), err
}

// DisableRole revokes the LOGIN privilege, if the role currently has it.
func DisableRole(ctx context.Context, q pgConn, role Role) (task.Result, error) {
	if !role.CanLogin {
		return task.New(task.Unchanged), nil
	}
	_, err := q.Exec(ctx, fmt.Sprintf(`ALTER ROLE %s NOLOGIN`, quoteIdent(role.Name)))
	return task.New(task.Success), err
}

// GrantRole adds name as a member of role, if not already granted.
func GrantRole(ctx context.Context, q pgConn, name string, role Role) (task.Result, error) {
	owned, err := GetUserRoles(ctx, q, name)
	if err != nil {
		return task.Result{}, err
	}
	for _, o := range owned {
		if o.Name == role.Name {
			return task.New(task.Unchanged), nil
		}
	}
	_, err = q.Exec(ctx, fmt.Sprintf(`GRANT %s TO %s`, quoteIdent(role.Name), quoteIdent(name)))
	return task.New(task.Success), err
}

// RevokeRole removes name's membership of role, if currently granted.
func RevokeRole(ctx context.Context, q pgConn, name string, role Role) (task.Result, error) {
	owned, err := GetUserRoles(ctx, q, name)
	if err != nil {
		return task.Result{}, err
	}
	found := false
	for _, o := range owned {
		if o.Name == role.Name {
			found = true
			break
		}
	}
	if !found {
		return task.New(task.Unchanged), nil
	}
	_, err = q.Exec(ctx, fmt.Sprintf(`REVOKE %s FROM %s`, quoteIdent(role.Name), quoteIdent(name)))
	return task.New(task.Success), err
}

// CreateDatabase creates a database owned by the given role. The connection
// passed in must be in autocommit mode: PostgreSQL forbids CREATE DATABASE
// inside a transaction block.
func CreateDatabase(ctx context.Context, q pgConn, name string, owner Role) (task.Result, error) {
	_, err := q.Exec(ctx, fmt.Sprintf(`CREATE DATABASE %s OWNER %s`, quoteIdent(name), quoteIdent(owner.Name)))
	if err != nil {
		if pgErrorCode(err) == sqlstateDuplicateDatabase {
			return task.New(task.Unchanged), nil
		}
		return task.Result{}, err
	}
	return task.New(task.Created), nil
}

// DropDatabase drops a database. Like CreateDatabase, this must run outside
// of a transaction.
func DropDatabase(ctx context.Context, q pgConn, name string) (task.Result, error) {
	_, err := q.Exec(ctx, fmt.Sprintf(`DROP DATABASE IF EXISTS %s`, quoteIdent(name)))
	if err != nil {
		return task.Result{}, err
	}
	return task.New(task.Success), nil
}
