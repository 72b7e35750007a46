// Package migrations embeds the hunt schema migrations.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
