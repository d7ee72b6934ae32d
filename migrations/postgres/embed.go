// Package migrations embeds SQL migration files.
package migrations

import (
	"embed"
)

//go:embed schema.sql
var fs embed.FS

// Schema returns the base schema applied by `tokensmith migrate`.
func Schema() string {
	b, err := fs.ReadFile("schema.sql")
	if err != nil {
		// embed garantiza la presencia del archivo en build time
		panic(err)
	}
	return string(b)
}
