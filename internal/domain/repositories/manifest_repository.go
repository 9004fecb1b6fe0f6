package repositories

import (
	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
)

// ManifestRepository turns a dependency-declaration document into a Manifest.
// Implementations parse the text themselves and never evaluate it.
type ManifestRepository interface {
	// Parse parses content, using name to pick the dialect and label diagnostics.
	Parse(name string, content []byte) (*entities.Manifest, error)

	// Load reads and parses the manifest at path.
	Load(path string) (*entities.Manifest, error)
}
