package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/srcf/controlplane/pkg/db"
)

// ErrNotFound is returned when a lookup by primary key matches no row.
var ErrNotFound = errors.New("store: not found")

// Querier is satisfied by *pgxpool.Pool and pgx.Tx, letting every query
// function run against either the pool or an in-flight transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store wraps a connection pool with the query helpers in this package.
type Store struct {
	pool *pgxpool.Pool
}

// New wraps an already-open pool. Callers are expected to open the pool via
// [github.com/srcf/controlplane/pkg/db.Open] with [db.WithMigrations] pointed
// at the embedded migrations directory.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Pool returns the underlying connection pool, for callers that need it
// directly (the runner's advisory lock and LISTEN connections in particular
// must bypass the pool and acquire a dedicated connection).
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// WithTx runs fn inside a transaction, committing on success and rolling
// back on error or panic.
func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return db.WithTx(ctx, s.pool, fn)
}
