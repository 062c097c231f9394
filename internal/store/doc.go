// Package store is the pgx-backed persistence layer for members, societies,
// domains, certificates and jobs. Every exported function takes a
// [github.com/jackc/pgx/v5] Queryer (either the pool or a transaction) so
// callers can compose multi-statement operations with [Store.WithTx].
package store
