package commands

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
	"github.com/rios0rios0/upstreamsync/internal/domain/repositories"
)

// Initialize is the interface for repository initialization.
type Initialize interface {
	Execute(ctx context.Context, settings *entities.Settings, opts InitializeOptions) error
}

// InitializeOptions selects which trees are initialized.
type InitializeOptions struct {
	Upstream         bool // Check out the tools and the primary codebase from upstream
	Snapshot         bool // Check out the snapshot submodule
	BaselineUpstream bool // Leave the upstream checkout unpatched
}

// InitializeCommand prepares the repository: the upstream working copies at
// their pinned revisions (patched unless a bare baseline is requested) and the
// snapshot submodule.
type InitializeCommand struct {
	vcs        repositories.VCSRepository
	submodules Submodules
	patch      Patch
}

// NewInitializeCommand creates a new InitializeCommand.
func NewInitializeCommand(
	vcs repositories.VCSRepository,
	submodules Submodules,
	patch Patch,
) *InitializeCommand {
	return &InitializeCommand{vcs: vcs, submodules: submodules, patch: patch}
}

// Execute runs initialize. Without any mode the snapshot is initialized.
func (it *InitializeCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	opts InitializeOptions,
) error {
	if !opts.Upstream && !opts.Snapshot {
		opts.Snapshot = true
	}

	if opts.Upstream {
		if err := it.initializeUpstream(ctx, settings); err != nil {
			return err
		}
		if !opts.BaselineUpstream {
			if err := it.patch.Execute(ctx, settings, PatchOptions{}); err != nil {
				return err
			}
		}
	}

	if opts.Snapshot {
		if err := it.initializeSnapshot(ctx, settings); err != nil {
			return err
		}
	}
	return nil
}

func (it *InitializeCommand) initializeUpstream(ctx context.Context, settings *entities.Settings) error {
	if err := settings.RequireVersion(); err != nil {
		return err
	}
	root := settings.Layout.Root

	registered, err := it.registeredPaths(ctx, root)
	if err != nil {
		return err
	}

	records := append(settings.ToolRecords(), settings.PrimaryRecord())
	for _, record := range records {
		if registered[record.Path] {
			record.FromManifest = false
		}
		if _, initErr := it.submodules.Initialize(ctx, settings, root, record); initErr != nil {
			return initErr
		}
	}

	// the upstream working copies are never committed to the wrapping repository
	for _, record := range records {
		if unstageErr := it.vcs.Unstage(ctx, root, record.Path); unstageErr != nil {
			logger.Warnf("Could not unstage %s: %v", record.Path, unstageErr)
		}
	}
	return nil
}

func (it *InitializeCommand) initializeSnapshot(ctx context.Context, settings *entities.Settings) error {
	root := settings.Layout.Root
	snapshotPath := entities.CleanPath(settings.Layout.SnapshotDir)

	listed, err := it.vcs.ListSubmodules(ctx, root)
	if err != nil {
		return fmt.Errorf("failed to read submodules of %s: %w", root, err)
	}

	record := entities.DependencyRecord{Path: snapshotPath}
	for _, candidate := range listed {
		if candidate.Path == snapshotPath {
			record = candidate
			break
		}
	}

	_, err = it.submodules.Initialize(ctx, settings, root, record)
	return err
}

func (it *InitializeCommand) registeredPaths(ctx context.Context, root string) (map[string]bool, error) {
	listed, err := it.vcs.ListSubmodules(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("failed to read submodules of %s: %w", root, err)
	}
	registered := make(map[string]bool, len(listed))
	for _, record := range listed {
		registered[record.Path] = true
	}
	return registered, nil
}
