//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/upstreamsync/internal/domain/commands"
	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
)

// StubInitializeCommand is a stub implementation of commands.Initialize.
type StubInitializeCommand struct {
	ExecuteCallCount int
	ExecuteErr       error
	LastSettings     *entities.Settings
	LastOpts         commands.InitializeOptions
}

var _ commands.Initialize = (*StubInitializeCommand)(nil)

func (s *StubInitializeCommand) Execute(
	_ context.Context,
	settings *entities.Settings,
	opts commands.InitializeOptions,
) error {
	s.ExecuteCallCount++
	s.LastSettings = settings
	s.LastOpts = opts
	return s.ExecuteErr
}
