// Package migrations embeds the SQL migration files so they can be applied
// with goose from the API server, the import command and integration tests.
package migrations

import "embed"

// FS holds all *.sql migration files embedded at compile time.
//
//go:embed *.sql
var FS embed.FS
