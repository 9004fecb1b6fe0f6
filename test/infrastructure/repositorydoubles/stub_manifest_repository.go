//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
	"github.com/rios0rios0/upstreamsync/internal/domain/repositories"
)

// StubManifestRepository implements repositories.ManifestRepository from a
// map of already-parsed manifests keyed by cleaned path.
type StubManifestRepository struct {
	Manifests map[string]*entities.Manifest
	LoadErrs  map[string]error
	Loaded    []string
}

var _ repositories.ManifestRepository = (*StubManifestRepository)(nil)

// NewStubManifestRepository creates a stub without any manifest.
func NewStubManifestRepository() *StubManifestRepository {
	return &StubManifestRepository{
		Manifests: map[string]*entities.Manifest{},
		LoadErrs:  map[string]error{},
	}
}

// Put registers a manifest at path.
func (s *StubManifestRepository) Put(location string, manifest *entities.Manifest) *StubManifestRepository {
	s.Manifests[filepath.Clean(location)] = manifest
	return s
}

func (s *StubManifestRepository) Parse(name string, _ []byte) (*entities.Manifest, error) {
	return s.Load(name)
}

func (s *StubManifestRepository) Load(location string) (*entities.Manifest, error) {
	key := filepath.Clean(location)
	s.Loaded = append(s.Loaded, key)
	if err := s.LoadErrs[key]; err != nil {
		return nil, err
	}
	manifest, found := s.Manifests[key]
	if !found {
		return nil, fmt.Errorf("failed to read manifest %s: %w", location, fs.ErrNotExist)
	}
	return manifest, nil
}
