package controllers

import (
	"go.uber.org/dig"

	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
)

// RegisterProviders registers all controller providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register controller constructors
	constructors := []interface{}{
		NewInitializeController,
		NewSnapshotController,
		NewPatchController,
		NewAnnotationController,
		NewVersionController,
		NewResolveController,
		NewRepackController,
		NewControllers,
	}
	for _, constructor := range constructors {
		if err := container.Provide(constructor); err != nil {
			return err
		}
	}

	return nil
}

// NewControllers aggregates all controllers into a slice for the AppInternal.
func NewControllers(
	initializeController *InitializeController,
	snapshotController *SnapshotController,
	patchController *PatchController,
	annotationController *AnnotationController,
	versionController *VersionController,
	resolveController *ResolveController,
	repackController *RepackController,
) *[]entities.Controller {
	return &[]entities.Controller{
		initializeController,
		snapshotController,
		patchController,
		annotationController,
		versionController,
		resolveController,
		repackController,
	}
}
