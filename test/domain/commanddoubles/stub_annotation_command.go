//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/upstreamsync/internal/domain/commands"
	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
)

// StubAnnotationCommand is a stub implementation of commands.Annotation.
type StubAnnotationCommand struct {
	Mismatches       []*entities.AnnotationMismatchError
	ExecuteErr       error
	ExecuteCallCount int
}

var _ commands.Annotation = (*StubAnnotationCommand)(nil)

func (s *StubAnnotationCommand) Execute(
	_ context.Context,
	_ *entities.Settings,
) ([]*entities.AnnotationMismatchError, error) {
	s.ExecuteCallCount++
	return s.Mismatches, s.ExecuteErr
}
