package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
	"github.com/rios0rios0/upstreamsync/internal/domain/repositories"
)

// Dialect parses one manifest syntax.
type Dialect interface {
	// Name returns the dialect identifier (e.g. "deps", "hcl").
	Name() string

	// Detect returns true if the file name uses this dialect.
	Detect(name string) bool

	// Parse parses the manifest text.
	Parse(name string, content []byte) (*entities.Manifest, error)
}

// Repository implements repositories.ManifestRepository over a set of dialects.
// Dialects are tried in registration order; the first one detecting the file wins.
type Repository struct {
	dialects []Dialect
}

var _ repositories.ManifestRepository = (*Repository)(nil)

// NewRepository creates an empty manifest repository.
func NewRepository() *Repository {
	return &Repository{}
}

// Register adds a dialect.
func (r *Repository) Register(d Dialect) {
	r.dialects = append(r.dialects, d)
}

// Names returns the registered dialect names in order.
func (r *Repository) Names() []string {
	names := make([]string, 0, len(r.dialects))
	for _, d := range r.dialects {
		names = append(names, d.Name())
	}
	return names
}

// Parse parses content with the dialect matching name.
func (r *Repository) Parse(name string, content []byte) (*entities.Manifest, error) {
	for _, d := range r.dialects {
		if d.Detect(name) {
			return d.Parse(name, content)
		}
	}
	return nil, &entities.ManifestParseError{
		Source: name, Reason: fmt.Sprintf("no dialect for %s", filepath.Base(name)),
	}
}

// Load reads the manifest at path. A missing file is returned as is, so
// callers can match it with fs.ErrNotExist.
func (r *Repository) Load(path string) (*entities.Manifest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return r.Parse(path, content)
}
