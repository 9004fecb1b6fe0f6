//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/upstreamsync/internal/domain/commands"
	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
)

// StubPatchCommand is a stub implementation of commands.Patch.
type StubPatchCommand struct {
	Series           *entities.PatchSeries
	PrepareErr       error
	PrepareCallCount int

	ExecuteErr       error
	ExecuteCallCount int
	LastOpts         commands.PatchOptions
}

var _ commands.Patch = (*StubPatchCommand)(nil)

func (s *StubPatchCommand) Prepare(_ context.Context, _ *entities.Settings) (*entities.PatchSeries, error) {
	s.PrepareCallCount++
	return s.Series, s.PrepareErr
}

func (s *StubPatchCommand) Execute(_ context.Context, _ *entities.Settings, opts commands.PatchOptions) error {
	s.ExecuteCallCount++
	s.LastOpts = opts
	return s.ExecuteErr
}
