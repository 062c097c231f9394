package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

const societyColumns = `society, description, role_email, uid, gid, danger, notes, joined_at, modified_at`

func scanSociety(row pgx.Row) (Society, error) {
	var s Society
	err := row.Scan(&s.Society, &s.Description, &s.RoleEmail, &s.UID, &s.GID,
		&s.Danger, &s.Notes, &s.JoinedAt, &s.ModifiedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Society{}, ErrNotFound
	}
	if err != nil {
		return Society{}, err
	}
	return s, nil
}

// GetSociety looks up a society by its short name.
func GetSociety(ctx context.Context, q Querier, name string) (Society, error) {
	row := q.QueryRow(ctx, `SELECT `+societyColumns+` FROM societies WHERE society = $1`, name)
	return scanSociety(row)
}

// CreateSociety inserts a new society row.
func CreateSociety(ctx context.Context, q Querier, s Society) error {
	_, err := q.Exec(ctx, `
		INSERT INTO societies (society, description, role_email, uid, gid)
		VALUES ($1, $2, $3, $4, $5)`,
		s.Society, s.Description, s.RoleEmail, s.UID, s.GID)
	return err
}

// UpdateSocietyDescription changes a society's display description.
func UpdateSocietyDescription(ctx context.Context, q Querier, society, description string) error {
	_, err := q.Exec(ctx, `
		UPDATE societies SET description = $2, modified_at = now() WHERE society = $1`,
		society, description)
	return err
}

// UpdateSocietyRoleEmail sets or clears a society's role-email address.
func UpdateSocietyRoleEmail(ctx context.Context, q Querier, society string, roleEmail *string) error {
	_, err := q.Exec(ctx, `
		UPDATE societies SET role_email = $2, modified_at = now() WHERE society = $1`,
		society, roleEmail)
	return err
}

// DeleteSociety removes a society row once its resources have been torn
// down. Foreign keys from society_admins and pending_society_admins must be
// cleared by the caller first.
func DeleteSociety(ctx context.Context, q Querier, society string) error {
	_, err := q.Exec(ctx, `DELETE FROM societies WHERE society = $1`, society)
	return err
}

// ListSocietiesForAdmin returns every society a member currently
// administers, used when suspending their account to decide which society
// UNIX groups to drop them from.
func ListSocietiesForAdmin(ctx context.Context, q Querier, crsid string) ([]Society, error) {
	rows, err := q.Query(ctx, `
		SELECT `+societyColumns+`
		FROM societies
		JOIN society_admins sa ON sa.society = societies.society
		WHERE sa.crsid = $1
		ORDER BY societies.society`, crsid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Society
	for rows.Next() {
		s, err := scanSociety(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// IsOrphaned reports whether a society has no remaining admins, the
// condition that triggers the orphaned-society sweep.
func IsOrphaned(ctx context.Context, q Querier, society string) (bool, error) {
	var count int
	err := q.QueryRow(ctx, `SELECT count(*) FROM society_admins WHERE society = $1`, society).Scan(&count)
	return count == 0, err
}
