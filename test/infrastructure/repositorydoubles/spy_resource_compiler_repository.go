//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/upstreamsync/internal/domain/repositories"
)

// RepackCall records a single invocation of Repack.
type RepackCall struct {
	Tool   []string
	Output string
	Inputs []string
}

// SpyResourceCompilerRepository implements repositories.ResourceCompilerRepository as a spy.
type SpyResourceCompilerRepository struct {
	Err   error
	Calls []RepackCall
}

var _ repositories.ResourceCompilerRepository = (*SpyResourceCompilerRepository)(nil)

func (s *SpyResourceCompilerRepository) Repack(_ context.Context, tool []string, output string, inputs []string) error {
	s.Calls = append(s.Calls, RepackCall{Tool: tool, Output: output, Inputs: inputs})
	return s.Err
}
