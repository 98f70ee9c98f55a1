// Package embedded carries the bundled card catalog compiled into the binary.
package embedded

import (
	"embed"
	"io/fs"
)

// FS embeds the catalog directory: sets.yaml, migrations.yaml and one
// cards/<code>.yaml file per set with a full card list.
//
//go:embed catalog
var FS embed.FS

// Catalog returns the catalog directory as the root of a filesystem.
func Catalog() fs.FS {
	sub, err := fs.Sub(FS, "catalog")
	if err != nil {
		// catalog is a literal directory in the embed pattern
		panic(err)
	}
	return sub
}
