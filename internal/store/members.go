package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

const memberColumns = `crsid, preferred_name, surname, email, mail_handler,
	member, "user", danger, notes, uid, gid, joined_at, modified_at`

func scanMember(row pgx.Row) (Member, error) {
	var m Member
	err := row.Scan(&m.CRSid, &m.PreferredName, &m.Surname, &m.Email, &m.MailHandler,
		&m.IsMember, &m.IsUser, &m.Danger, &m.Notes, &m.UID, &m.GID, &m.JoinedAt, &m.ModifiedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Member{}, ErrNotFound
	}
	if err != nil {
		return Member{}, err
	}
	return m, nil
}

// GetMember looks up a member by CRSid.
func GetMember(ctx context.Context, q Querier, crsid string) (Member, error) {
	row := q.QueryRow(ctx, `SELECT `+memberColumns+` FROM members WHERE crsid = $1`, crsid)
	return scanMember(row)
}

// ListSocietyAdmins returns the members administering a society.
func ListSocietyAdmins(ctx context.Context, q Querier, society string) ([]Member, error) {
	rows, err := q.Query(ctx, `
		SELECT `+memberColumns+`
		FROM members
		JOIN society_admins sa ON sa.crsid = members.crsid
		WHERE sa.society = $1
		ORDER BY members.crsid`, society)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// IsSocietyAdmin reports whether crsid currently administers society.
func IsSocietyAdmin(ctx context.Context, q Querier, crsid, society string) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM society_admins WHERE crsid = $1 AND society = $2)`,
		crsid, society).Scan(&exists)
	return exists, err
}

// AddSocietyAdmin grants crsid admin rights over society. If crsid has no
// member row yet, the grant is recorded in pending_society_admins instead,
// to be promoted by PromotePendingAdmins once the member signs up.
func AddSocietyAdmin(ctx context.Context, q Querier, crsid, society string) error {
	var hasMember bool
	if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM members WHERE crsid = $1)`, crsid).
		Scan(&hasMember); err != nil {
		return err
	}
	if !hasMember {
		_, err := q.Exec(ctx, `
			INSERT INTO pending_society_admins (crsid, society) VALUES ($1, $2)
			ON CONFLICT DO NOTHING`, crsid, society)
		return err
	}
	_, err := q.Exec(ctx, `
		INSERT INTO society_admins (crsid, society) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, crsid, society)
	return err
}

// RemoveSocietyAdmin revokes crsid's admin rights over society.
func RemoveSocietyAdmin(ctx context.Context, q Querier, crsid, society string) error {
	_, err := q.Exec(ctx, `DELETE FROM society_admins WHERE crsid = $1 AND society = $2`, crsid, society)
	return err
}

// PromotePendingAdmins moves any pending_society_admins rows for crsid into
// society_admins, run once after a member's first successful sign-up.
func PromotePendingAdmins(ctx context.Context, q Querier, crsid string) error {
	_, err := q.Exec(ctx, `
		INSERT INTO society_admins (crsid, society)
		SELECT crsid, society FROM pending_society_admins WHERE crsid = $1
		ON CONFLICT DO NOTHING`, crsid)
	if err != nil {
		return err
	}
	_, err = q.Exec(ctx, `DELETE FROM pending_society_admins WHERE crsid = $1`, crsid)
	return err
}

// UpsertMember inserts a new member or updates the mutable fields of an
// existing one, keyed on CRSid.
func UpsertMember(ctx context.Context, q Querier, m Member) error {
	_, err := q.Exec(ctx, `
		INSERT INTO members (crsid, preferred_name, surname, email, mail_handler,
			member, "user", danger, notes, uid, gid, joined_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (crsid) DO UPDATE SET
			preferred_name = EXCLUDED.preferred_name,
			surname = EXCLUDED.surname,
			email = EXCLUDED.email,
			mail_handler = EXCLUDED.mail_handler,
			member = EXCLUDED.member,
			"user" = EXCLUDED."user",
			danger = EXCLUDED.danger,
			notes = EXCLUDED.notes,
			uid = EXCLUDED.uid,
			gid = EXCLUDED.gid,
			modified_at = now()`,
		m.CRSid, m.PreferredName, m.Surname, m.Email, m.MailHandler,
		m.IsMember, m.IsUser, m.Danger, m.Notes, m.UID, m.GID, m.JoinedAt)
	return err
}

// DeleteMember removes a member row once their resources have been torn
// down. Foreign keys from society_admins and pending_society_admins must be
// cleared by the caller first.
func DeleteMember(ctx context.Context, q Querier, crsid string) error {
	_, err := q.Exec(ctx, `DELETE FROM members WHERE crsid = $1`, crsid)
	return err
}

// NextFreeUID returns the lowest UID greater than the configured base that
// is not already assigned to a member or society, mirroring the allocation
// strategy of the original adduser wrapper.
func NextFreeUID(ctx context.Context, q Querier, base int32) (int32, error) {
	var next int32
	err := q.QueryRow(ctx, `
		SELECT COALESCE(MAX(uid), $1) + 1 FROM (
			SELECT uid FROM members WHERE uid >= $1
			UNION ALL
			SELECT uid FROM societies WHERE uid >= $1
		) ids`, base).Scan(&next)
	return next, err
}
