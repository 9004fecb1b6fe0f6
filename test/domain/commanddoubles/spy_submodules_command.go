//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/upstreamsync/internal/domain/commands"
	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
)

// SpySubmodulesCommand is a spy implementation of commands.Submodules.
type SpySubmodulesCommand struct {
	Initialized   []entities.DependencyRecord
	InitializeErr error
	ResetDirs     []string
	ResetErr      error
}

var _ commands.Submodules = (*SpySubmodulesCommand)(nil)

func (s *SpySubmodulesCommand) Initialize(
	_ context.Context,
	_ *entities.Settings,
	_ string,
	record entities.DependencyRecord,
) (*entities.Submodule, error) {
	s.Initialized = append(s.Initialized, record)
	submodule := entities.NewSubmodule(record)
	if s.InitializeErr != nil {
		return submodule, s.InitializeErr
	}
	submodule.Advance(entities.StateRecursed)
	return submodule, nil
}

func (s *SpySubmodulesCommand) InitializeChildren(
	_ context.Context,
	_ *entities.Settings,
	_ string,
) ([]*entities.Submodule, error) {
	return nil, nil
}

func (s *SpySubmodulesCommand) Reset(_ context.Context, dir string) error {
	s.ResetDirs = append(s.ResetDirs, dir)
	return s.ResetErr
}
