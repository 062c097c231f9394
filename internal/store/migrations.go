package store

import "embed"

// MigrationsFS holds the control-plane schema's goose migration files, for
// db.WithMigrations.
//
//go:embed migrations/*.sql
var MigrationsFS embed.FS
