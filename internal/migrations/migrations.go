// Package migrations embeds the REST store's MySQL schema.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
