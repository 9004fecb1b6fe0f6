//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/upstreamsync/internal/domain/commands"
)

// StubRepackCommand is a stub implementation of commands.Repack.
type StubRepackCommand struct {
	Paths            []string
	ExecuteErr       error
	ExecuteCallCount int
	LastOpts         commands.RepackOptions
}

var _ commands.Repack = (*StubRepackCommand)(nil)

func (s *StubRepackCommand) Execute(_ context.Context, opts commands.RepackOptions) ([]string, error) {
	s.ExecuteCallCount++
	s.LastOpts = opts
	return s.Paths, s.ExecuteErr
}
