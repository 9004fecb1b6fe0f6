package commands

import (
	"context"
	"errors"
	"fmt"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
	"github.com/rios0rios0/upstreamsync/internal/domain/repositories"
)

// Repack is the interface for the locale repack.
type Repack interface {
	Execute(ctx context.Context, opts RepackOptions) ([]string, error)
}

// RepackOptions holds runtime options for repack-locales.
type RepackOptions struct {
	Plan        entities.RepackPlan
	Tool        []string // Resource compiler command line
	Locales     []string
	ListInputs  bool // Only list the required inputs
	ListOutputs bool // Only list the expected outputs
}

// RepackCommand merges the per-locale resource packs through the external compiler.
type RepackCommand struct {
	compiler repositories.ResourceCompilerRepository
}

// NewRepackCommand creates a new RepackCommand.
func NewRepackCommand(compiler repositories.ResourceCompilerRepository) *RepackCommand {
	return &RepackCommand{compiler: compiler}
}

// Execute returns the listed paths in list mode, otherwise repacks every locale
// and returns the generated outputs.
func (it *RepackCommand) Execute(ctx context.Context, opts RepackOptions) ([]string, error) {
	if len(opts.Locales) == 0 {
		return nil, errors.New("at least one locale is required")
	}
	if err := opts.Plan.Validate(); err != nil {
		return nil, err
	}
	if opts.ListInputs && opts.ListOutputs {
		return nil, errors.New("only one of the input or output listings can be requested")
	}

	switch {
	case opts.ListInputs:
		return opts.Plan.RequiredInputs(opts.Locales), nil
	case opts.ListOutputs:
		return opts.Plan.ExpectedOutputs(opts.Locales), nil
	}

	outputs := make([]string, 0, len(opts.Locales))
	for _, locale := range opts.Locales {
		output := opts.Plan.OutputFor(locale)
		logger.Debugf("Repacking %s into %s", locale, output)
		if err := it.compiler.Repack(ctx, opts.Tool, output, opts.Plan.InputsFor(locale)); err != nil {
			return outputs, fmt.Errorf("failed to repack locale %s: %w", locale, err)
		}
		outputs = append(outputs, output)
	}
	return outputs, nil
}
