//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/rios0rios0/upstreamsync/internal/domain/repositories"
)

// LinkCall records a single invocation of Link.
type LinkCall struct {
	Src string
	Dst string
}

// SpyFileLinkerRepository implements repositories.FileLinkerRepository as a spy.
type SpyFileLinkerRepository struct {
	ClearedDirs []string
	Kept        [][]string
	Links       []LinkCall
	LinkErr     error
}

var _ repositories.FileLinkerRepository = (*SpyFileLinkerRepository)(nil)

func (s *SpyFileLinkerRepository) Clear(dir string, keep []string) error {
	s.ClearedDirs = append(s.ClearedDirs, dir)
	s.Kept = append(s.Kept, keep)
	return nil
}

func (s *SpyFileLinkerRepository) Link(src, dst string) error {
	s.Links = append(s.Links, LinkCall{Src: src, Dst: dst})
	return s.LinkErr
}
