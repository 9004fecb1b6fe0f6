//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/upstreamsync/internal/domain/commands"
	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
)

// StubSnapshotCommand is a stub implementation of commands.Snapshot.
type StubSnapshotCommand struct {
	Exported         int
	ExecuteErr       error
	ExecuteCallCount int
}

var _ commands.Snapshot = (*StubSnapshotCommand)(nil)

func (s *StubSnapshotCommand) Execute(_ context.Context, _ *entities.Settings) (int, error) {
	s.ExecuteCallCount++
	return s.Exported, s.ExecuteErr
}
