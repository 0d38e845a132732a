// Package db embeds the versioned SQL migration files.
package db

import (
	"embed"
	"io/fs"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migrations returns the migration files as a filesystem rooted at the
// directory containing them.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrationFS, "migrations")
	if err != nil {
		// The subdirectory is embedded at compile time.
		panic(err)
	}
	return sub
}
