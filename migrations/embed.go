// Package migrations holds the SQL schema for each supported database driver,
// one directory per driver, applied in file name order.
package migrations

import "embed"

//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
