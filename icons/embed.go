package icons

import (
	"embed"
	"io/fs"
)

// DefaultManifestPath is the manifest shipped with the editor, relative to
// the asset root.
const DefaultManifestPath = "editor.icons.yaml"

//go:embed data
var dataFS embed.FS

// EmbeddedFS returns the built-in asset root: the default manifest plus the
// icons/ directory it references.
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(dataFS, "data")
	if err != nil {
		panic(err)
	}
	return sub
}

// DefaultManifest parses the built-in manifest.
func DefaultManifest() (Manifest, error) {
	return LoadManifest(EmbeddedFS(), DefaultManifestPath)
}
