// Package migrations holds the rulequery schema: api_keys and the translations audit log.
// db.MigrateUp picks the directory matching the connection's driver.
package migrations

import "embed"

// SqliteMigrations are applied to sqlite:// databases, including sqlite::memory:.
//
//go:embed sqlite/*.sql
var SqliteMigrations embed.FS

// PostgresMigrations are applied to postgres:// and postgresql:// databases.
//
//go:embed postgres/*.sql
var PostgresMigrations embed.FS
