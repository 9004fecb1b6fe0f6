package commands

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
	"github.com/rios0rios0/upstreamsync/internal/domain/repositories"
)

// Patch is the interface for the patch pipeline.
type Patch interface {
	// Prepare regenerates and annotates the patch series of the snapshot.
	Prepare(ctx context.Context, settings *entities.Settings) (*entities.PatchSeries, error)

	// Execute regenerates the series and applies it to the upstream working copies.
	Execute(ctx context.Context, settings *entities.Settings, opts PatchOptions) error
}

// PatchOptions holds runtime options for patch-upstream.
type PatchOptions struct {
	Reset bool // Reset the upstream working copies to their baseline first
}

// PatchCommand derives the patch series between the snapshot baseline and its
// tip and replays it on the upstream working copies. A failed apply leaves the
// working copies as they are; Reset is the recovery path.
type PatchCommand struct {
	vcs        repositories.VCSRepository
	submodules Submodules
}

// NewPatchCommand creates a new PatchCommand.
func NewPatchCommand(vcs repositories.VCSRepository, submodules Submodules) *PatchCommand {
	return &PatchCommand{vcs: vcs, submodules: submodules}
}

// Execute runs patch-upstream.
func (it *PatchCommand) Execute(ctx context.Context, settings *entities.Settings, opts PatchOptions) error {
	if err := settings.RequireVersion(); err != nil {
		return err
	}

	if opts.Reset {
		if err := it.resetUpstream(ctx, settings); err != nil {
			return err
		}
	}

	series, err := it.Prepare(ctx, settings)
	if err != nil {
		return err
	}
	if len(series.Entries) == 0 {
		logger.Info("The snapshot has no patches on top of its baseline")
		return nil
	}

	if applyErr := it.apply(ctx, settings, series); applyErr != nil {
		return applyErr
	}
	logger.Info("-- done --")
	return nil
}

// Prepare locates the snapshot baseline, regenerates the patch files into an
// emptied directory and annotates each of them with its owner.
func (it *PatchCommand) Prepare(ctx context.Context, settings *entities.Settings) (*entities.PatchSeries, error) {
	if err := settings.RequireVersion(); err != nil {
		return nil, err
	}
	snapshotDir := settings.SnapshotPath()

	baseline, err := it.findBaseline(ctx, snapshotDir, settings.Version)
	if err != nil {
		return nil, err
	}
	logger.Debugf("Snapshot baseline for %s is %s", settings.Version, baseline)

	patchesDir := settings.PatchesPath()
	if removeErr := os.RemoveAll(patchesDir); removeErr != nil {
		return nil, fmt.Errorf("failed to clear %s: %w", patchesDir, removeErr)
	}
	if mkdirErr := os.MkdirAll(patchesDir, 0o755); mkdirErr != nil {
		return nil, fmt.Errorf("failed to create %s: %w", patchesDir, mkdirErr)
	}

	logger.Infof("-- preparing patches to %s --", patchesDir)
	files, err := it.vcs.FormatPatch(ctx, snapshotDir, baseline, patchesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to generate patches from %s: %w", snapshotDir, err)
	}

	return annotate(patchesDir, settings.Upstream.Name, files)
}

func (it *PatchCommand) findBaseline(ctx context.Context, snapshotDir, version string) (string, error) {
	if !isDirectory(snapshotDir) {
		return "", &entities.BaselineNotFoundError{Dir: snapshotDir, Version: version}
	}
	hashes, err := it.vcs.Log(ctx, snapshotDir, version, 1)
	if err != nil {
		return "", fmt.Errorf("failed to search the history of %s: %w", snapshotDir, err)
	}
	if len(hashes) == 0 {
		return "", &entities.BaselineNotFoundError{Dir: snapshotDir, Version: version}
	}
	return hashes[0], nil
}

// annotate reads the generated files and tags each with its owner. Patches
// without an owner token belong to the primary codebase.
func annotate(patchesDir, primary string, files []string) (*entities.PatchSeries, error) {
	series := &entities.PatchSeries{Dir: patchesDir, PrimaryOwner: primary}

	sorted := append([]string(nil), files...)
	sort.Strings(sorted)
	for _, file := range sorted {
		sequence, err := entities.ParsePatchSequence(file)
		if err != nil {
			return nil, err
		}
		content, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read patch %s: %w", file, err)
		}

		owner, found := entities.ParseOwnerTag(string(content))
		if !found {
			owner = primary
		}
		series.Entries = append(series.Entries, entities.PatchEntry{
			Sequence: sequence,
			OwnerTag: owner,
			File:     file,
			Content:  string(content),
		})
	}
	return series, nil
}

// apply replays the series owner by owner, each owner's patches in sequence order.
func (it *PatchCommand) apply(ctx context.Context, settings *entities.Settings, series *entities.PatchSeries) error {
	upstreamDir := settings.UpstreamPath()

	for _, owner := range series.Owners() {
		ownerDir := filepath.Join(upstreamDir, filepath.FromSlash(series.OwnerDir(owner)))
		if !isDirectory(ownerDir) {
			logger.Warnf("-- missing %s, skipping --", ownerDir)
			continue
		}

		strip := series.StripCount(owner)
		logger.Infof("-- entering %s --", ownerDir)
		for _, entry := range series.ForOwner(owner) {
			logger.Debugf("Applying %s with -p%d", entry.Name(), strip)
			if err := it.vcs.ApplyMailbox(ctx, ownerDir, entry.File, strip); err != nil {
				return &entities.PatchApplyError{OwnerDir: ownerDir, Patch: entry.Name(), Err: err}
			}
		}
	}
	return nil
}

// resetUpstream discards local state in the primary codebase and its
// submodules, then moves each of them back to its baseline marker commit.
func (it *PatchCommand) resetUpstream(ctx context.Context, settings *entities.Settings) error {
	primaryDir := settings.PrimaryPath()
	records, err := it.vcs.ListSubmodules(ctx, primaryDir)
	if err != nil {
		return fmt.Errorf("failed to read submodules of %s: %w", primaryDir, err)
	}

	dirs := make([]string, 0, len(records)+1)
	for _, record := range records {
		dirs = append(dirs, filepath.Join(primaryDir, filepath.FromSlash(record.Path)))
	}
	dirs = append(dirs, primaryDir)

	logger.Infof("-- resetting upstream submodules in %s to baseline --", primaryDir)
	for _, dir := range dirs {
		if !isDirectory(dir) {
			continue
		}
		if resetErr := it.submodules.Reset(ctx, dir); resetErr != nil {
			return resetErr
		}

		hashes, logErr := it.vcs.Log(ctx, dir, settings.Upstream.BaselineMarker, 1)
		if logErr != nil {
			return fmt.Errorf("failed to search the history of %s: %w", dir, logErr)
		}
		if len(hashes) == 0 {
			logger.Debugf("No baseline marker in %s", dir)
			continue
		}
		if resetErr := it.vcs.Reset(ctx, dir, entities.ResetHard, hashes[0]); resetErr != nil {
			return &entities.CheckoutError{Dir: dir, Target: hashes[0], Err: resetErr}
		}
		if cleanErr := it.vcs.Clean(ctx, dir); cleanErr != nil {
			return &entities.CheckoutError{Dir: dir, Target: hashes[0], Err: cleanErr}
		}
	}
	return nil
}

// dependencyDirs lists the registered working copies below the upstream dir,
// relative to it: every tool, the primary codebase and its submodules at any depth.
func dependencyDirs(ctx context.Context, vcs repositories.VCSRepository, settings *entities.Settings) ([]string, error) {
	var dirs []string
	for _, tool := range settings.Tools {
		dirs = append(dirs, tool.Name)
	}

	var walk func(prefix string) error
	walk = func(prefix string) error {
		dirs = append(dirs, prefix)
		dir := filepath.Join(settings.UpstreamPath(), filepath.FromSlash(prefix))
		records, err := vcs.ListSubmodules(ctx, dir)
		if err != nil {
			return fmt.Errorf("failed to read submodules of %s: %w", dir, err)
		}
		for _, record := range records {
			child := path.Join(prefix, record.Path)
			if isDirectory(filepath.Join(settings.UpstreamPath(), filepath.FromSlash(child))) {
				if walkErr := walk(child); walkErr != nil {
					return walkErr
				}
			} else {
				dirs = append(dirs, child)
			}
		}
		return nil
	}

	if err := walk(settings.Upstream.Name); err != nil {
		return nil, err
	}
	return dirs, nil
}
