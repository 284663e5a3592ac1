// Package migrations embeds the SQL schema migrations so the server and the
// migrate command run the same files without a filesystem path.
package migrations

import "embed"

// FS holds the *.up.sql and *.down.sql files
//
//go:embed *.sql
var FS embed.FS
