package repositories

import (
	"context"

	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
)

// VCSRepository abstracts the version-control client. Every operation takes the
// working directory it acts on; the process working directory is never changed.
type VCSRepository interface {
	// CurrentRevision returns the commit checked out in dir.
	CurrentRevision(ctx context.Context, dir string) (string, error)

	// PendingOperations reports interrupted merge, rebase and patch-apply sessions in dir.
	PendingOperations(ctx context.Context, dir string) (entities.PendingOperations, error)

	// Abort cancels an interrupted operation.
	Abort(ctx context.Context, dir string, operation entities.PendingOperation) error

	// Fetch fetches a ref from a remote into FETCH_HEAD. A depth of zero fetches full history.
	Fetch(ctx context.Context, dir, remote, ref string, depth int) error

	// Checkout detaches dir at the given target.
	Checkout(ctx context.Context, dir, target string) error

	// Reset resets dir to target, or to HEAD when target is empty.
	Reset(ctx context.Context, dir string, mode entities.ResetMode, target string) error

	// Clean removes untracked and ignored files from dir.
	Clean(ctx context.Context, dir string) error

	// Log returns up to limit commit hashes, newest first, whose message contains
	// marker as a whole token.
	Log(ctx context.Context, dir, marker string, limit int) ([]string, error)

	// LsRemote reports whether the remote at url advertises ref.
	LsRemote(ctx context.Context, url, ref string) (bool, error)

	// AddSubmodule registers url at path inside dir, overwriting a stale registration.
	AddSubmodule(ctx context.Context, dir, url, path string) error

	// InitSubmodule copies the registration of path into the repository config.
	InitSubmodule(ctx context.Context, dir, path string) error

	// UpdateSubmodule checks path out at the revision recorded in the index.
	UpdateSubmodule(ctx context.Context, dir, path string) error

	// SyncSubmodule propagates the registered URL of path into its remote config.
	SyncSubmodule(ctx context.Context, dir, path string) error

	// IndexRevision returns the revision the index of dir records for the submodule at path.
	IndexRevision(ctx context.Context, dir, path string) (string, error)

	// ListTrackedFiles returns the files tracked in dir, relative to dir.
	ListTrackedFiles(ctx context.Context, dir string) ([]string, error)

	// ListSubmodules reads the .gitmodules file of dir. A missing file yields no records.
	ListSubmodules(ctx context.Context, dir string) ([]entities.DependencyRecord, error)

	// FormatPatch writes one mail-formatted patch per commit after base into outputDir.
	FormatPatch(ctx context.Context, dir, base, outputDir string) ([]string, error)

	// ApplyMailbox applies a mail-formatted patch with a three-way merge, stripping strip components.
	ApplyMailbox(ctx context.Context, dir, patchFile string, strip int) error

	// CommitAll commits every tracked change in dir with the given message.
	CommitAll(ctx context.Context, dir, message string) error

	// Unstage removes path from the index of dir, keeping the working tree.
	Unstage(ctx context.Context, dir, path string) error
}
