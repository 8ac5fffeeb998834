// Package sqlite embeds the goose migrations for the SQLite slot store.
package sqlite

import "embed"

//go:embed *.sql
var Migrations embed.FS
