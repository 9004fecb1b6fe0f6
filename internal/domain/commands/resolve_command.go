package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
	"github.com/rios0rios0/upstreamsync/internal/domain/repositories"
)

// errRefNotAdvertised is wrapped into a RemoteFetchError by the remote check.
var errRefNotAdvertised = errors.New("ref is not advertised by the remote")

// Resolve is the interface for the dependency resolver.
type Resolve interface {
	Execute(ctx context.Context, settings *entities.Settings, dir string) (entities.Resolution, error)
}

// ResolveCommand loads the manifest of a checkout together with the nested
// manifests it names, and reconciles the records into one resolution.
type ResolveCommand struct {
	manifests repositories.ManifestRepository
	vcs       repositories.VCSRepository
}

// NewResolveCommand creates a new ResolveCommand.
func NewResolveCommand(
	manifests repositories.ManifestRepository,
	vcs repositories.VCSRepository,
) *ResolveCommand {
	return &ResolveCommand{manifests: manifests, vcs: vcs}
}

// Execute resolves the dependencies declared by the manifest found in dir. A
// missing top-level manifest is returned as an error wrapping fs.ErrNotExist.
func (it *ResolveCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	dir string,
) (entities.Resolution, error) {
	opts := settings.ManifestOptions()

	records, err := it.collect(dir, "", settings.Manifest.File, opts, map[string]bool{})
	if err != nil {
		return nil, err
	}

	if settings.Manifest.MirrorFile != "" {
		records, err = it.overlayMirror(dir, settings.Manifest.MirrorFile, opts, records)
		if err != nil {
			return nil, err
		}
	}

	records = rewriteURLs(records, settings.Manifest.URLRewrites)

	resolution, err := entities.Reconcile(records, settings.ReconcilePolicy())
	if err != nil {
		return nil, err
	}

	if settings.Manifest.VerifyRemoteRefs {
		if verifyErr := it.verifyRemoteRefs(ctx, dir, resolution); verifyErr != nil {
			return nil, verifyErr
		}
	}

	logger.Debugf("Resolved %d dependencies in %s", len(resolution), dir)
	return resolution, nil
}

// collect parses the manifest at prefix inside dir and every manifest it lists
// in recursedeps. Records of nested manifests are relocated below their prefix.
func (it *ResolveCommand) collect(
	dir, prefix, fileName string,
	opts entities.ManifestOptions,
	visited map[string]bool,
) ([]entities.DependencyRecord, error) {
	manifestPath := filepath.Join(dir, filepath.FromSlash(prefix), fileName)
	if visited[manifestPath] {
		return nil, nil
	}
	visited[manifestPath] = true

	manifest, err := it.manifests.Load(manifestPath)
	if err != nil {
		return nil, err
	}

	records := manifest.Records(opts)
	for i := range records {
		records[i] = records[i].WithPrefix(prefix)
	}

	for _, nested := range manifest.RecurseDeps {
		location, ok := opts.NormalizePath(nested)
		if !ok {
			logger.Debugf("Skipping nested manifest %s outside of the checkout", nested)
			continue
		}

		nestedRecords, nestedErr := it.collect(dir, path.Join(prefix, location), fileName, opts, visited)
		if errors.Is(nestedErr, fs.ErrNotExist) {
			logger.Warnf("Nested manifest for %s not found, skipping", path.Join(prefix, location))
			continue
		}
		if nestedErr != nil {
			return nil, nestedErr
		}
		records = append(records, nestedRecords...)
	}

	return records, nil
}

// overlayMirror keeps only the records the mirror manifest also declares,
// taking the mirror URL and, for unpinned records, the mirror pin.
func (it *ResolveCommand) overlayMirror(
	dir, fileName string,
	opts entities.ManifestOptions,
	records []entities.DependencyRecord,
) ([]entities.DependencyRecord, error) {
	mirror, err := it.manifests.Load(filepath.Join(dir, fileName))
	if err != nil {
		return nil, fmt.Errorf("failed to load mirror manifest: %w", err)
	}

	mirrored := make(map[string]entities.DependencyRecord)
	for _, record := range mirror.Records(opts) {
		if _, found := mirrored[record.Path]; !found {
			mirrored[record.Path] = record
		}
	}

	result := make([]entities.DependencyRecord, 0, len(records))
	for _, record := range records {
		counterpart, found := mirrored[record.Path]
		if !found {
			logger.Debugf("Dropping %s, it has no mirror", record.Path)
			continue
		}
		record.URL = counterpart.URL
		if !record.IsPinned() {
			record.PinnedRevision = counterpart.PinnedRevision
		}
		result = append(result, record)
	}
	return result, nil
}

// rewriteURLs applies the fix-up rules to records that follow a ref.
func rewriteURLs(records []entities.DependencyRecord, rules []entities.URLRewrite) []entities.DependencyRecord {
	for i, record := range records {
		if record.Ref == "" {
			continue
		}
		for _, rule := range rules {
			if strings.Contains(record.URL, rule.From) {
				rewritten := strings.Replace(record.URL, rule.From, rule.To, 1)
				logger.Debugf("Rewriting URL of %s to %s", record.Path, rewritten)
				records[i].URL = rewritten
				break
			}
		}
	}
	return records
}

func (it *ResolveCommand) verifyRemoteRefs(
	ctx context.Context,
	dir string,
	resolution entities.Resolution,
) error {
	logger.Info("Verifying remote refs...")
	for _, record := range resolution.Sorted() {
		if record.Ref == "" {
			continue
		}
		found, err := it.vcs.LsRemote(ctx, record.URL, record.Ref)
		if err != nil {
			return &entities.RemoteFetchError{Dir: dir, Remote: record.URL, Ref: record.Ref, Err: err}
		}
		if !found {
			return &entities.RemoteFetchError{
				Dir: dir, Remote: record.URL, Ref: record.Ref, Err: errRefNotAdvertised,
			}
		}
	}
	return nil
}
