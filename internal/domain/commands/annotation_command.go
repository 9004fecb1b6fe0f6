package commands

import (
	"context"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
	"github.com/rios0rios0/upstreamsync/internal/domain/repositories"
)

// Annotation is the interface for the patch annotation check.
type Annotation interface {
	Execute(ctx context.Context, settings *entities.Settings) ([]*entities.AnnotationMismatchError, error)
}

// AnnotationCommand checks that every patch only touches its declared owner.
type AnnotationCommand struct {
	vcs   repositories.VCSRepository
	patch Patch
}

// NewAnnotationCommand creates a new AnnotationCommand.
func NewAnnotationCommand(vcs repositories.VCSRepository, patch Patch) *AnnotationCommand {
	return &AnnotationCommand{vcs: vcs, patch: patch}
}

// Execute regenerates the series and returns every mismatch found. Mismatches
// are reported, never fatal.
func (it *AnnotationCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
) ([]*entities.AnnotationMismatchError, error) {
	series, err := it.patch.Prepare(ctx, settings)
	if err != nil {
		return nil, err
	}

	dirs, err := dependencyDirs(ctx, it.vcs, settings)
	if err != nil {
		return nil, err
	}

	mismatches, err := series.Validate(dirs)
	if err != nil {
		return nil, err
	}

	for _, mismatch := range mismatches {
		logger.Warn(mismatch.Error())
	}
	logger.Infof("Checked %d patches, %d with mismatching annotations", len(series.Entries), len(mismatches))
	return mismatches, nil
}
