// Package migrations embeds the goose migration files for the refresh
// token ledger schema.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
