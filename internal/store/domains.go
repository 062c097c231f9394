package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

const domainColumns = `id, class, owner, domain, root, wild, danger, last_good`

func scanDomain(row pgx.Row) (Domain, error) {
	var d Domain
	err := row.Scan(&d.ID, &d.Class, &d.Owner, &d.Domain, &d.Root, &d.Wild, &d.Danger, &d.LastGood)
	if errors.Is(err, pgx.ErrNoRows) {
		return Domain{}, ErrNotFound
	}
	if err != nil {
		return Domain{}, err
	}
	return d, nil
}

// GetDomain looks up a vhost by its domain ID.
func GetDomain(ctx context.Context, q Querier, id int32) (Domain, error) {
	row := q.QueryRow(ctx, `SELECT `+domainColumns+` FROM domains WHERE id = $1`, id)
	return scanDomain(row)
}

// ListDomainsForOwner returns every vhost owned by a member or society.
func ListDomainsForOwner(ctx context.Context, q Querier, class DomainClass, owner string) ([]Domain, error) {
	rows, err := q.Query(ctx, `
		SELECT `+domainColumns+` FROM domains WHERE class = $1 AND owner = $2 ORDER BY domain`,
		class, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Domain
	for rows.Next() {
		d, err := scanDomain(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// CreateDomain registers a new vhost and returns its assigned ID.
func CreateDomain(ctx context.Context, q Querier, d Domain) (int32, error) {
	var id int32
	err := q.QueryRow(ctx, `
		INSERT INTO domains (class, owner, domain, root, wild, danger)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		d.Class, d.Owner, d.Domain, d.Root, d.Wild, d.Danger).Scan(&id)
	return id, err
}

// UpdateDomainRoot changes the web root a vhost serves from.
func UpdateDomainRoot(ctx context.Context, q Querier, id int32, root *string) error {
	_, err := q.Exec(ctx, `UPDATE domains SET root = $2 WHERE id = $1`, id, root)
	return err
}

// MarkDomainGood records that a domain has most recently resolved to the
// expected target, used by the periodic HTTPS-certificate sweep to decide
// which domains are eligible for certificate issuance.
func MarkDomainGood(ctx context.Context, q Querier, id int32) error {
	_, err := q.Exec(ctx, `UPDATE domains SET last_good = now() WHERE id = $1`, id)
	return err
}

// DeleteDomain removes a vhost registration.
func DeleteDomain(ctx context.Context, q Querier, id int32) error {
	_, err := q.Exec(ctx, `DELETE FROM domains WHERE id = $1`, id)
	return err
}

// ListDueForCert returns domains that have resolved correctly but carry no
// certificate row yet, the candidate set for the periodic issuance sweep.
func ListDueForCert(ctx context.Context, q Querier) ([]Domain, error) {
	rows, err := q.Query(ctx, `
		SELECT `+domainColumns+`
		FROM domains d
		WHERE d.last_good IS NOT NULL
		  AND NOT EXISTS (SELECT 1 FROM https_certs c WHERE c.domain = d.domain)
		ORDER BY d.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Domain
	for rows.Next() {
		d, err := scanDomain(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// CreateCert records that a certificate has been requested for a domain.
func CreateCert(ctx context.Context, q Querier, domain string, danger bool) (int32, error) {
	var id int32
	err := q.QueryRow(ctx, `
		INSERT INTO https_certs (domain, danger) VALUES ($1, $2) RETURNING id`,
		domain, danger).Scan(&id)
	return id, err
}
