package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
	"github.com/rios0rios0/upstreamsync/internal/domain/repositories"
)

const gitDirName = ".git"

// Snapshot is the interface for the snapshot export.
type Snapshot interface {
	Execute(ctx context.Context, settings *entities.Settings) (int, error)
}

// SnapshotCommand exports the tracked files of the upstream working copies
// into the snapshot tree.
type SnapshotCommand struct {
	vcs    repositories.VCSRepository
	linker repositories.FileLinkerRepository
}

// NewSnapshotCommand creates a new SnapshotCommand.
func NewSnapshotCommand(
	vcs repositories.VCSRepository,
	linker repositories.FileLinkerRepository,
) *SnapshotCommand {
	return &SnapshotCommand{vcs: vcs, linker: linker}
}

// Execute clears the snapshot (keeping its VCS metadata) and links every
// exported file into it. It returns the number of files exported.
func (it *SnapshotCommand) Execute(ctx context.Context, settings *entities.Settings) (int, error) {
	snapshotDir := settings.SnapshotPath()
	logger.Infof("Clearing the directory %s", snapshotDir)
	if err := it.linker.Clear(snapshotDir, []string{gitDirName}); err != nil {
		return 0, fmt.Errorf("failed to clear %s: %w", snapshotDir, err)
	}

	matcher := settings.PlatformMatcher()
	exported := 0
	for _, source := range settings.SnapshotSources() {
		count, err := it.export(ctx, settings, source, matcher)
		if err != nil {
			return exported, err
		}
		exported += count
	}

	logger.Infof("Exported %d files into %s", exported, snapshotDir)
	return exported, nil
}

func (it *SnapshotCommand) export(
	ctx context.Context,
	settings *entities.Settings,
	source entities.SnapshotSource,
	platforms entities.PlatformMatcher,
) (int, error) {
	srcDir := filepath.Join(settings.UpstreamPath(), filepath.FromSlash(source.Name))
	dstDir := filepath.Join(settings.SnapshotPath(), filepath.FromSlash(source.Name))
	logger.Infof("Exporting contents of %s", srcDir)

	files, err := it.listFiles(ctx, srcDir, platforms)
	if err != nil {
		return 0, err
	}
	files = append(files, source.Extras...)

	excludes := excludeMatcher(source.Exclude)
	count := 0
	for _, file := range files {
		if excludes.Match(strings.Split(file, "/"), false) {
			continue
		}

		src := filepath.Join(srcDir, filepath.FromSlash(file))
		info, statErr := os.Stat(src)
		if errors.Is(statErr, fs.ErrNotExist) {
			logger.Warnf("File does not exist: %s", src)
			continue
		}
		if statErr != nil {
			return count, fmt.Errorf("failed to stat %s: %w", src, statErr)
		}
		if info.IsDir() {
			// unpopulated submodule
			continue
		}

		if linkErr := it.linker.Link(src, filepath.Join(dstDir, filepath.FromSlash(file))); linkErr != nil {
			return count, fmt.Errorf("failed to export %s: %w", file, linkErr)
		}
		count++
	}
	return count, nil
}

// listFiles returns the files tracked in dir and, below their own paths, the
// files tracked by its populated submodules that apply to this host.
func (it *SnapshotCommand) listFiles(
	ctx context.Context,
	dir string,
	platforms entities.PlatformMatcher,
) ([]string, error) {
	files, err := it.vcs.ListTrackedFiles(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list files of %s: %w", dir, err)
	}

	submodules, err := it.vcs.ListSubmodules(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read submodules of %s: %w", dir, err)
	}
	for _, submodule := range submodules {
		subDir := filepath.Join(dir, filepath.FromSlash(submodule.Path))
		if !platforms.Matches(submodule.Platforms) || !isDirectory(subDir) {
			logger.Debugf("-- skipping %s --", submodule.Path)
			continue
		}
		subFiles, subErr := it.listFiles(ctx, subDir, platforms)
		if subErr != nil {
			return nil, subErr
		}
		for _, file := range subFiles {
			files = append(files, path.Join(submodule.Path, file))
		}
	}
	return files, nil
}

func excludeMatcher(patterns []string) gitignore.Matcher {
	parsed := make([]gitignore.Pattern, 0, len(patterns))
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" || strings.HasPrefix(pattern, "#") {
			continue
		}
		parsed = append(parsed, gitignore.ParsePattern(pattern, nil))
	}
	return gitignore.NewMatcher(parsed)
}
