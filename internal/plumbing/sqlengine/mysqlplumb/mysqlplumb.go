// Package mysqlplumb implements the MySQL dialect of the shared SQL
// plumbing shape, against a wildcard-host ('%') user model: every account
// this package creates is named `<user>@'%'`, matching the original
// facility's design of one logical account usable from any application
// host rather than per-host grants.
package mysqlplumb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/srcf/controlplane/internal/task"
)

// MySQL error numbers this package treats specially; see
// https://dev.mysql.com/doc/mysql-errors/en/server-error-reference.html.
const (
	errDBCreateExists = 1007
	errDBDropExists   = 1008
	errUserDropExists = 3162
	errNoSuchUser     = 1396
)

func mysqlErrorNumber(err error) uint16 {
	var mErr *mysql.MySQLError
	if errors.As(err, &mErr) {
		return mErr.Number
	}
	return 0
}

// quoteIdent backtick-quotes a MySQL identifier, doubling any embedded
// backtick, matching the original wrapper's manual handling because the
// driver's placeholder substitution does not quote identifiers.
func quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// EscapeLike escapes '%' and '_' wildcard characters in a LIKE pattern
// fragment, so a literal database name search is not misinterpreted as a
// wildcard match.
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)
	return r.Replace(s)
}

// CreateUser creates a wildcard-host account with a random password, if it
// doesn't already exist. Returns Unchanged (no password) if it does.
func CreateUser(ctx context.Context, db *sql.DB, name string) (task.Result, error) {
	passwd, err := task.NewPassword()
	if err != nil {
		return task.Result{}, err
	}
	rows, err := execAffected(ctx, db, fmt.Sprintf(
		"CREATE USER IF NOT EXISTS %s@'%%' IDENTIFIED BY ?", quoteIdent(name)), passwd.String())
	if err != nil {
		return task.Result{}, err
	}
	if rows == 0 {
		return task.New(task.Unchanged), nil
	}
	return task.NewValue(task.Created, passwd), nil
}

// ResetPassword sets a new random password on an existing account.
func ResetPassword(ctx context.Context, db *sql.DB, name string) (task.Result, error) {
	passwd, err := task.NewPassword()
	if err != nil {
		return task.Result{}, err
	}
	rows, err := execAffected(ctx, db, fmt.Sprintf(
		"SET PASSWORD FOR %s@'%%' = ?", quoteIdent(name)), passwd.String())
	if err != nil {
		if mysqlErrorNumber(err) == errNoSuchUser {
			return task.Result{}, fmt.Errorf("mysqlplumb: no user %q to reset password for", name)
		}
		return task.Result{}, err
	}
	if rows == 0 {
		return task.Result{}, fmt.Errorf("mysqlplumb: no user %q to reset password for", name)
	}
	return task.NewValue(task.Success, passwd), nil
}

// DropUser drops an account and all of its grants.
func DropUser(ctx context.Context, db *sql.DB, name string) (task.Result, error) {
	_, err := db.ExecContext(ctx, fmt.Sprintf("DROP USER IF EXISTS %s@'%%'", quoteIdent(name)))
	if err != nil {
		if mysqlErrorNumber(err) == errUserDropExists {
			return task.New(task.Unchanged), nil
		}
		return task.Result{}, err
	}
	return task.New(task.Success), nil
}

// GrantDatabase grants an account full permissions on a database.
func GrantDatabase(ctx context.Context, db *sql.DB, user, database string) (task.Result, error) {
	_, err := db.ExecContext(ctx, fmt.Sprintf(
		"GRANT ALL ON %s.* TO %s@'%%'", quoteIdent(database), quoteIdent(user)))
	if err != nil {
		return task.Result{}, err
	}
	return task.New(task.Success), nil
}

// RevokeDatabase removes an account's permissions on a database.
func RevokeDatabase(ctx context.Context, db *sql.DB, user, database string) (task.Result, error) {
	_, err := db.ExecContext(ctx, fmt.Sprintf(
		"REVOKE ALL ON %s.* FROM %s@'%%'", quoteIdent(database), quoteIdent(user)))
	if err != nil {
		return task.Result{}, err
	}
	return task.New(task.Success), nil
}

// CreateDatabase creates a database. No permissions are granted.
func CreateDatabase(ctx context.Context, db *sql.DB, name string) (task.Result, error) {
	rows, err := execAffected(ctx, db, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", quoteIdent(name)))
	if err != nil {
		if mysqlErrorNumber(err) == errDBCreateExists {
			return task.New(task.Unchanged), nil
		}
		return task.Result{}, err
	}
	if rows == 0 {
		return task.New(task.Unchanged), nil
	}
	return task.New(task.Created), nil
}

// DropDatabase drops a database and all of its tables.
func DropDatabase(ctx context.Context, db *sql.DB, name string) (task.Result, error) {
	_, err := db.ExecContext(ctx, fmt.Sprintf("DROP DATABASE IF EXISTS %s", quoteIdent(name)))
	if err != nil {
		if mysqlErrorNumber(err) == errDBDropExists {
			return task.New(task.Unchanged), nil
		}
		return task.Result{}, err
	}
	return task.New(task.Success), nil
}

// ListDatabaseGrantees returns the wildcard-host accounts currently granted
// any privilege on database, the set a society database's role sync
// operation diffs against the current admin list.
func ListDatabaseGrantees(ctx context.Context, db *sql.DB, database string) ([]string, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT DISTINCT GRANTEE FROM information_schema.SCHEMA_PRIVILEGES
		WHERE TABLE_SCHEMA = ?`, database)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var grantee string
		if err := rows.Scan(&grantee); err != nil {
			return nil, err
		}
		// GRANTEE is reported as 'name'@'host'; strip the quoting and host.
		name := strings.TrimPrefix(grantee, "'")
		if idx := strings.Index(name, "'@"); idx >= 0 {
			name = name[:idx]
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// ListDatabases returns database names matching a LIKE pattern.
func ListDatabases(ctx context.Context, db *sql.DB, like string) ([]string, error) {
	rows, err := db.QueryContext(ctx, "SHOW DATABASES LIKE ?", like)
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

// execAffected runs a statement and returns the number of rows it reports
// affected, used to distinguish "already existed" (0 rows, MySQL's
// IF NOT EXISTS convention) from a fresh creation (1 row).
func execAffected(ctx context.Context, db *sql.DB, query string, args ...any) (int64, error) {
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
