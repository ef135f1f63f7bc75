// Package migrations embeds the SQL schema for the sqlite snapshot store.
package migrations

import "embed"

// Files holds the migration files.
//
//go:embed *.sql
var Files embed.FS
