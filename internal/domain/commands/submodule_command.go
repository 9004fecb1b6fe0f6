package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
	"github.com/rios0rios0/upstreamsync/internal/domain/repositories"
)

const (
	originRemote      = "origin"
	fetchHead         = "FETCH_HEAD"
	initializeMessage = "initialize submodules"
	ordinalMarker     = "@"
)

// Submodules is the interface for the submodule lifecycle manager.
type Submodules interface {
	// Initialize drives one dependency of the checkout in dir to its required revision.
	Initialize(
		ctx context.Context, settings *entities.Settings, dir string, record entities.DependencyRecord,
	) (*entities.Submodule, error)

	// InitializeChildren initializes the dependencies declared inside dir.
	InitializeChildren(ctx context.Context, settings *entities.Settings, dir string) ([]*entities.Submodule, error)

	// Reset aborts interrupted operations in dir and discards local changes.
	Reset(ctx context.Context, dir string) error
}

// SubmoduleCommand brings dependency working copies to an exact state. Every
// VCS call names its working directory explicitly. Running two instances
// against the same checkout at once is not supported.
type SubmoduleCommand struct {
	vcs      repositories.VCSRepository
	resolver Resolve
}

// NewSubmoduleCommand creates a new SubmoduleCommand.
func NewSubmoduleCommand(vcs repositories.VCSRepository, resolver Resolve) *SubmoduleCommand {
	return &SubmoduleCommand{vcs: vcs, resolver: resolver}
}

// Initialize runs the full lifecycle for one record declared by the checkout in
// dir. Records rejected by the platform filter are returned unregistered.
func (it *SubmoduleCommand) Initialize(
	ctx context.Context,
	settings *entities.Settings,
	dir string,
	record entities.DependencyRecord,
) (*entities.Submodule, error) {
	submodule := entities.NewSubmodule(record)

	if !settings.PlatformMatcher().Matches(record.Platforms) {
		logger.Infof("-- skipping %s for this operating system (%s) --", record.Path, record.PlatformLabel())
		return submodule, nil
	}
	submodule.Advance(entities.StateRegistered)
	logger.Infof("-- initializing %s --", record.Path)

	workDir := filepath.Join(dir, filepath.FromSlash(record.Path))
	if isDirectory(workDir) {
		if err := it.Reset(ctx, workDir); err != nil {
			return submodule, err
		}
	}
	submodule.Advance(entities.StateSynced)

	if err := it.register(ctx, dir, record); err != nil {
		return submodule, err
	}
	submodule.Advance(entities.StateFetched)

	revision, err := it.checkout(ctx, settings, dir, workDir, record)
	if err != nil {
		return submodule, err
	}
	submodule.ResolvedRevision = revision
	submodule.Advance(entities.StateCheckedOut)

	children, err := it.InitializeChildren(ctx, settings, workDir)
	if err != nil {
		return submodule, err
	}
	submodule.Children = children
	submodule.Advance(entities.StateRecursed)

	return submodule, nil
}

// InitializeChildren initializes the submodules listed in the .gitmodules of
// dir. When there are none, the manifest of dir is resolved instead and the
// resulting registrations are committed.
func (it *SubmoduleCommand) InitializeChildren(
	ctx context.Context,
	settings *entities.Settings,
	dir string,
) ([]*entities.Submodule, error) {
	listed, err := it.vcs.ListSubmodules(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read submodules of %s: %w", dir, err)
	}
	if len(listed) > 0 {
		return it.initializeAll(ctx, settings, dir, listed)
	}

	resolution, err := it.resolver.Execute(ctx, settings, dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(resolution) == 0 {
		return nil, nil
	}

	records := resolution.Sorted()
	logger.Info("Manifest provides the following dependencies:")
	for _, record := range records {
		logger.Infof("  %-60s %-80s %s", record.Path, record.URL, record.Revision())
	}

	children, err := it.initializeAll(ctx, settings, dir, records)
	if err != nil {
		return children, err
	}
	if commitErr := it.vcs.CommitAll(ctx, dir, initializeMessage); commitErr != nil {
		logger.Warnf("Could not commit the initialized submodules in %s: %v", dir, commitErr)
	}
	return children, nil
}

// Reset aborts an interrupted merge (or rebase) and patch-apply session, then
// hard-resets and cleans the working copy.
func (it *SubmoduleCommand) Reset(ctx context.Context, dir string) error {
	pending, err := it.vcs.PendingOperations(ctx, dir)
	if err != nil {
		return &entities.CheckoutError{Dir: dir, Target: "HEAD", Err: err}
	}

	switch {
	case pending.MergeHead:
		logger.Info("merge in progress... aborting merge.")
		it.abort(ctx, dir, entities.OperationMerge)
	case pending.RebaseMerge:
		logger.Info("rebase in progress... aborting rebase.")
		it.abort(ctx, dir, entities.OperationRebase)
	}
	if pending.RebaseApply {
		logger.Info("am in progress... aborting am.")
		it.abort(ctx, dir, entities.OperationApply)
	}

	if resetErr := it.vcs.Reset(ctx, dir, entities.ResetHard, ""); resetErr != nil {
		return &entities.CheckoutError{Dir: dir, Target: "HEAD", Err: resetErr}
	}
	if cleanErr := it.vcs.Clean(ctx, dir); cleanErr != nil {
		return &entities.CheckoutError{Dir: dir, Target: "HEAD", Err: cleanErr}
	}
	return nil
}

func (it *SubmoduleCommand) abort(ctx context.Context, dir string, operation entities.PendingOperation) {
	if err := it.vcs.Abort(ctx, dir, operation); err != nil {
		logger.Warnf("Could not abort %s in %s: %v", operation, dir, err)
	}
}

func (it *SubmoduleCommand) initializeAll(
	ctx context.Context,
	settings *entities.Settings,
	dir string,
	records []entities.DependencyRecord,
) ([]*entities.Submodule, error) {
	submodules := make([]*entities.Submodule, 0, len(records))
	for _, record := range records {
		submodule, err := it.Initialize(ctx, settings, dir, record)
		if submodule != nil {
			submodules = append(submodules, submodule)
		}
		if err != nil {
			return submodules, err
		}
	}
	return submodules, nil
}

func (it *SubmoduleCommand) register(ctx context.Context, dir string, record entities.DependencyRecord) error {
	if record.FromManifest {
		if err := it.vcs.AddSubmodule(ctx, dir, record.URL, record.Path); err != nil {
			return fmt.Errorf("failed to add submodule %s: %w", record.Path, err)
		}
	}
	if err := it.vcs.InitSubmodule(ctx, dir, record.Path); err != nil {
		return fmt.Errorf("failed to init submodule %s: %w", record.Path, err)
	}
	if err := it.vcs.SyncSubmodule(ctx, dir, record.Path); err != nil {
		return fmt.Errorf("failed to sync submodule %s: %w", record.Path, err)
	}
	if err := it.vcs.UpdateSubmodule(ctx, dir, record.Path); err != nil {
		return fmt.Errorf("failed to update submodule %s: %w", record.Path, err)
	}
	return nil
}

// checkout moves the working copy to the exact revision the record requires
// and returns that revision.
func (it *SubmoduleCommand) checkout(
	ctx context.Context,
	settings *entities.Settings,
	dir, workDir string,
	record entities.DependencyRecord,
) (string, error) {
	var target string

	switch {
	case record.Ref != "":
		if err := it.vcs.Fetch(ctx, workDir, originRemote, record.Ref, 0); err != nil {
			return "", &entities.RemoteFetchError{Dir: workDir, Remote: originRemote, Ref: record.Ref, Err: err}
		}
		if err := it.vcs.Checkout(ctx, workDir, fetchHead); err != nil {
			return "", &entities.CheckoutError{Dir: workDir, Target: fetchHead, Err: err}
		}
		resolved, err := it.resolveExact(ctx, settings, workDir, record)
		if err != nil {
			return "", err
		}
		target = resolved
	case record.IsPinned():
		target = record.PinnedRevision
	default:
		indexed, err := it.vcs.IndexRevision(ctx, dir, record.Path)
		if err != nil {
			return "", &entities.CheckoutError{Dir: workDir, Target: record.Path, Err: err}
		}
		target = indexed
	}

	current, err := it.vcs.CurrentRevision(ctx, workDir)
	if err != nil {
		return "", &entities.CheckoutError{Dir: workDir, Target: target, Err: err}
	}
	if current == target {
		return target, nil
	}

	if fetchErr := it.vcs.Fetch(ctx, workDir, originRemote, "", 0); fetchErr != nil {
		logger.Warnf("Could not fetch the remaining history of %s: %v", workDir, fetchErr)
	}
	if checkoutErr := it.vcs.Checkout(ctx, workDir, target); checkoutErr != nil {
		return "", &entities.CheckoutError{Dir: workDir, Target: target, Err: checkoutErr}
	}
	return target, nil
}

// resolveExact finds the revision to record after checking out a fetched ref:
// the pin when there is one, otherwise the newest commit mentioning the
// product version (primary codebase) or the revision ordinal (everything else).
// Without a marker, or when the search finds nothing, HEAD is kept.
func (it *SubmoduleCommand) resolveExact(
	ctx context.Context,
	settings *entities.Settings,
	workDir string,
	record entities.DependencyRecord,
) (string, error) {
	if record.IsPinned() {
		return record.PinnedRevision, nil
	}

	marker := ""
	switch {
	case samePath(workDir, settings.PrimaryPath()):
		marker = settings.Version
	case record.RevisionOrdinal > 0:
		marker = ordinalMarker + strconv.Itoa(record.RevisionOrdinal)
	}

	if marker != "" {
		hashes, err := it.vcs.Log(ctx, workDir, marker, 1)
		if err != nil {
			return "", &entities.CheckoutError{Dir: workDir, Target: marker, Err: err}
		}
		if len(hashes) > 0 {
			return hashes[0], nil
		}
		logger.Warnf("No commit mentions %q in %s, keeping the fetched head", marker, workDir)
	}

	current, err := it.vcs.CurrentRevision(ctx, workDir)
	if err != nil {
		return "", &entities.CheckoutError{Dir: workDir, Target: fetchHead, Err: err}
	}
	return current, nil
}

func isDirectory(location string) bool {
	info, err := os.Stat(location)
	return err == nil && info.IsDir()
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
