// Package migrations embeds the client's local sqlite schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
