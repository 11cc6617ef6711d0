// Package migrations embeds the command journal schema into the binary.
package migrations

import "embed"

// FS holds every *.sql migration at its root; pass "." as the directory.
//
//go:embed *.sql
var FS embed.FS
