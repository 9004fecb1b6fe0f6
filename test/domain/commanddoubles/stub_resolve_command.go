//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/upstreamsync/internal/domain/commands"
	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
)

// StubResolveCommand is a stub implementation of commands.Resolve returning
// a fixed resolution per directory.
type StubResolveCommand struct {
	Resolutions map[string]entities.Resolution
	ExecuteErr  error
	Dirs        []string
}

var _ commands.Resolve = (*StubResolveCommand)(nil)

func (s *StubResolveCommand) Execute(
	_ context.Context,
	_ *entities.Settings,
	dir string,
) (entities.Resolution, error) {
	s.Dirs = append(s.Dirs, dir)
	if s.ExecuteErr != nil {
		return nil, s.ExecuteErr
	}
	return s.Resolutions[dir], nil
}
