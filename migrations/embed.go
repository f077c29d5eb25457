// Package migrations embeds the SQL migration files so they can be applied
// by the goose programmatic API at server start-up and in tests.
package migrations

import "embed"

// FS holds the listings and photos schema migrations.
// Pass it to goose.NewProvider rather than reading a path at runtime.
//
//go:embed *.sql
var FS embed.FS
