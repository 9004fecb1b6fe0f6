package resourcepack

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rios0rios0/upstreamsync/internal/domain/repositories"
	"github.com/rios0rios0/upstreamsync/internal/infrastructure/repositories/git"
)

// CompilerRepository invokes the external pack tool as "<tool...> <output> <inputs...>".
type CompilerRepository struct {
	runner git.CommandRunner
}

var _ repositories.ResourceCompilerRepository = (*CompilerRepository)(nil)

// NewCompilerRepository creates a CompilerRepository running the tool through runner.
func NewCompilerRepository(runner git.CommandRunner) *CompilerRepository {
	return &CompilerRepository{runner: runner}
}

// Repack merges inputs into output, creating the output directory first.
func (r *CompilerRepository) Repack(ctx context.Context, tool []string, output string, inputs []string) error {
	if len(tool) == 0 {
		return errors.New("no resource compiler configured")
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory for %s: %w", output, err)
	}

	args := append(append(append([]string{}, tool[1:]...), output), inputs...)
	if _, err := r.runner.Run(ctx, "", tool[0], args...); err != nil {
		return fmt.Errorf("resource compiler failed for %s: %w", output, err)
	}
	return nil
}
