package commands

import (
	"go.uber.org/dig"
)

// RegisterProviders registers all command providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register command constructors
	constructors := []interface{}{
		NewResolveCommand,
		NewSubmoduleCommand,
		NewPatchCommand,
		NewAnnotationCommand,
		NewInitializeCommand,
		NewSnapshotCommand,
		NewRepackCommand,
	}
	for _, constructor := range constructors {
		if err := container.Provide(constructor); err != nil {
			return err
		}
	}

	// Bind interfaces to implementations
	if err := container.Provide(func(impl *ResolveCommand) Resolve {
		return impl
	}); err != nil {
		return err
	}
	if err := container.Provide(func(impl *SubmoduleCommand) Submodules {
		return impl
	}); err != nil {
		return err
	}
	if err := container.Provide(func(impl *PatchCommand) Patch {
		return impl
	}); err != nil {
		return err
	}
	if err := container.Provide(func(impl *AnnotationCommand) Annotation {
		return impl
	}); err != nil {
		return err
	}
	if err := container.Provide(func(impl *InitializeCommand) Initialize {
		return impl
	}); err != nil {
		return err
	}
	if err := container.Provide(func(impl *SnapshotCommand) Snapshot {
		return impl
	}); err != nil {
		return err
	}
	if err := container.Provide(func(impl *RepackCommand) Repack {
		return impl
	}); err != nil {
		return err
	}

	return nil
}
