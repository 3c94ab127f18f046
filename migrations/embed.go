// Package migrations embeds the PostgreSQL schema so the binaries can migrate
// without the SQL files on disk.
package migrations

import "embed"

// FS holds every *.up.sql and *.down.sql file
//
//go:embed *.sql
var FS embed.FS
