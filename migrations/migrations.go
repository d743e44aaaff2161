// Package migrations embeds the SQL schema migrations so they can be applied
// through golang-migrate's iofs source both at startup and from tests.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
