package git

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	gogit "github.com/go-git/go-git/v5"
	gogitconfig "github.com/go-git/go-git/v5/config"
	formatconfig "github.com/go-git/go-git/v5/plumbing/format/config"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/storage/memory"

	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
	"github.com/rios0rios0/upstreamsync/internal/domain/repositories"
)

const (
	gitBinary       = "git"
	gitmodulesFile  = ".gitmodules"
	submoduleMode   = "160000"
	mergeHeadFile   = "MERGE_HEAD"
	rebaseMergeDir  = "rebase-merge"
	rebaseApplyDir  = "rebase-apply"
	patchGlob       = "*" + entities.PatchFileSuffix
	tokenEnvVar     = "GIT_TOKEN"
	tokenUserEnvVar = "GIT_USERNAME"
)

// VCSRepository implements repositories.VCSRepository with the git command
// line for every mutation and go-git for reads that need no subprocess.
type VCSRepository struct {
	runner CommandRunner
}

var _ repositories.VCSRepository = (*VCSRepository)(nil)

// NewVCSRepository creates a VCSRepository running git through runner.
func NewVCSRepository(runner CommandRunner) *VCSRepository {
	return &VCSRepository{runner: runner}
}

func (r *VCSRepository) git(ctx context.Context, dir string, args ...string) (string, error) {
	return r.runner.Run(ctx, dir, gitBinary, args...)
}

// CurrentRevision returns the commit HEAD points at.
func (r *VCSRepository) CurrentRevision(_ context.Context, dir string) (string, error) {
	repo, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{EnableDotGitCommonDir: true})
	if err != nil {
		return "", fmt.Errorf("failed to open repository %s: %w", dir, err)
	}
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to read HEAD of %s: %w", dir, err)
	}
	return head.Hash().String(), nil
}

// PendingOperations inspects the git dir for interrupted sessions.
func (r *VCSRepository) PendingOperations(ctx context.Context, dir string) (entities.PendingOperations, error) {
	output, err := r.git(ctx, dir, "rev-parse", "--git-dir")
	if err != nil {
		return entities.PendingOperations{}, err
	}
	gitDir := strings.TrimSpace(output)
	if !filepath.IsAbs(gitDir) {
		gitDir = filepath.Join(dir, gitDir)
	}

	return entities.PendingOperations{
		MergeHead:   exists(filepath.Join(gitDir, mergeHeadFile)),
		RebaseMerge: exists(filepath.Join(gitDir, rebaseMergeDir)),
		RebaseApply: exists(filepath.Join(gitDir, rebaseApplyDir)),
	}, nil
}

// Abort cancels an interrupted merge, rebase or am session.
func (r *VCSRepository) Abort(ctx context.Context, dir string, operation entities.PendingOperation) error {
	_, err := r.git(ctx, dir, string(operation), "--abort")
	return err
}

// Fetch fetches ref from remote. An empty ref fetches the remote's default refspecs.
func (r *VCSRepository) Fetch(ctx context.Context, dir, remote, ref string, depth int) error {
	args := []string{"fetch"}
	if depth > 0 {
		args = append(args, "--depth="+strconv.Itoa(depth))
	}
	args = append(args, remote)
	if ref != "" {
		args = append(args, ref)
	}
	_, err := r.git(ctx, dir, args...)
	return err
}

// Checkout checks out target.
func (r *VCSRepository) Checkout(ctx context.Context, dir, target string) error {
	_, err := r.git(ctx, dir, "checkout", "-q", target)
	return err
}

// Reset resets the working copy in the given mode.
func (r *VCSRepository) Reset(ctx context.Context, dir string, mode entities.ResetMode, target string) error {
	args := []string{"reset", "-q", "--" + string(mode)}
	if target != "" {
		args = append(args, target)
	}
	_, err := r.git(ctx, dir, args...)
	return err
}

// Clean removes untracked files and directories, ignored ones included.
func (r *VCSRepository) Clean(ctx context.Context, dir string) error {
	_, err := r.git(ctx, dir, "clean", "-xdf")
	return err
}

// Log searches commit messages for marker as a whole token, so "@12345" does
// not match "@123456" and "33.0.1750.17" does not match "33.0.1750.170".
func (r *VCSRepository) Log(ctx context.Context, dir, marker string, limit int) ([]string, error) {
	output, err := r.git(ctx, dir,
		"log", "-n"+strconv.Itoa(limit), "--format=%H", "--extended-regexp", "--grep="+markerPattern(marker),
	)
	if err != nil {
		return nil, err
	}
	return lines(output), nil
}

// markerPattern quotes marker into a POSIX extended regexp. A marker edge that
// is alphanumeric may not touch another alphanumeric character or a dotted
// continuation such as ".1".
func markerPattern(marker string) string {
	if marker == "" {
		return ""
	}
	pattern := regexp.QuoteMeta(marker)
	if isAlnum(rune(marker[0])) {
		pattern = `(^|[^[:alnum:].])` + pattern
	}
	if isAlnum(rune(marker[len(marker)-1])) {
		pattern += `($|[^[:alnum:].]|\.($|[^[:alnum:]]))`
	}
	return pattern
}

func isAlnum(char rune) bool {
	return unicode.IsLetter(char) || unicode.IsDigit(char)
}

// LsRemote lists the refs of url through an in-memory remote.
func (r *VCSRepository) LsRemote(ctx context.Context, url, ref string) (bool, error) {
	remote := gogit.NewRemote(memory.NewStorage(), &gogitconfig.RemoteConfig{
		Name: "origin",
		URLs: []string{url},
	})

	refs, err := remote.ListContext(ctx, &gogit.ListOptions{Auth: authFor(url)})
	if err != nil {
		return false, fmt.Errorf("failed to list remote refs of %s: %w", url, err)
	}

	for _, advertised := range refs {
		name := advertised.Name().String()
		if name == ref || name == "refs/heads/"+ref || name == "refs/tags/"+ref {
			return true, nil
		}
	}
	return false, nil
}

// AddSubmodule registers a submodule, replacing a stale registration.
func (r *VCSRepository) AddSubmodule(ctx context.Context, dir, url, path string) error {
	_, err := r.git(ctx, dir, "submodule", "add", "-f", url, path)
	return err
}

// InitSubmodule initializes the submodule at path.
func (r *VCSRepository) InitSubmodule(ctx context.Context, dir, path string) error {
	_, err := r.git(ctx, dir, "submodule", "init", path)
	return err
}

// UpdateSubmodule updates the submodule at path to its index revision.
func (r *VCSRepository) UpdateSubmodule(ctx context.Context, dir, path string) error {
	_, err := r.git(ctx, dir, "submodule", "update", path)
	return err
}

// SyncSubmodule synchronizes the remote URL of the submodule at path.
func (r *VCSRepository) SyncSubmodule(ctx context.Context, dir, path string) error {
	_, err := r.git(ctx, dir, "submodule", "sync", path)
	return err
}

// IndexRevision reads the gitlink entry of path from the index.
func (r *VCSRepository) IndexRevision(ctx context.Context, dir, path string) (string, error) {
	output, err := r.git(ctx, dir, "ls-files", "--stage", "--", path)
	if err != nil {
		return "", err
	}
	for _, line := range lines(output) {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[0] == submoduleMode {
			return fields[1], nil
		}
	}
	return "", fmt.Errorf("%s is not registered as a submodule in the index of %s", path, dir)
}

// ListTrackedFiles lists the files tracked in dir.
func (r *VCSRepository) ListTrackedFiles(ctx context.Context, dir string) ([]string, error) {
	output, err := r.git(ctx, dir, "ls-files", "-z")
	if err != nil {
		return nil, err
	}
	var files []string
	for _, file := range strings.Split(output, "\x00") {
		if file != "" {
			files = append(files, file)
		}
	}
	return files, nil
}

// ListSubmodules decodes the .gitmodules file of dir, including the "os" key
// naming the platforms of a submodule.
func (r *VCSRepository) ListSubmodules(_ context.Context, dir string) ([]entities.DependencyRecord, error) {
	file, err := os.Open(filepath.Join(dir, gitmodulesFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	cfg := formatconfig.New()
	if decodeErr := formatconfig.NewDecoder(file).Decode(cfg); decodeErr != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filepath.Join(dir, gitmodulesFile), decodeErr)
	}

	var records []entities.DependencyRecord
	for _, subsection := range cfg.Section("submodule").Subsections {
		location := entities.CleanPath(subsection.Option("path"))
		if location == "" {
			continue
		}
		record := entities.DependencyRecord{Path: location, URL: subsection.Option("url")}
		for _, platform := range strings.Split(subsection.Option("os"), ",") {
			if platform = strings.TrimSpace(platform); platform != "" {
				record.Platforms = append(record.Platforms, platform)
			}
		}
		records = append(records, record)
	}
	return records, nil
}

// FormatPatch writes the commits after base as numbered patch files.
func (r *VCSRepository) FormatPatch(ctx context.Context, dir, base, outputDir string) ([]string, error) {
	absOutput, err := filepath.Abs(outputDir)
	if err != nil {
		return nil, err
	}
	if _, formatErr := r.git(ctx, dir, "format-patch", "-q", "-o", absOutput, base); formatErr != nil {
		return nil, formatErr
	}

	files, err := filepath.Glob(filepath.Join(absOutput, patchGlob))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// ApplyMailbox applies a patch file with "git am -3".
func (r *VCSRepository) ApplyMailbox(ctx context.Context, dir, patchFile string, strip int) error {
	absPatch, err := filepath.Abs(patchFile)
	if err != nil {
		return err
	}
	_, err = r.git(ctx, dir, "am", "-3", "-p"+strconv.Itoa(strip), absPatch)
	return err
}

// CommitAll commits all tracked changes.
func (r *VCSRepository) CommitAll(ctx context.Context, dir, message string) error {
	_, err := r.git(ctx, dir, "commit", "-q", "-a", "-m", message)
	return err
}

// Unstage resets path in the index.
func (r *VCSRepository) Unstage(ctx context.Context, dir, path string) error {
	_, err := r.git(ctx, dir, "reset", "-q", "HEAD", "--", path)
	return err
}

// authFor returns token credentials for HTTP remotes when GIT_TOKEN is set.
func authFor(url string) transport.AuthMethod {
	token := os.Getenv(tokenEnvVar)
	if token == "" || !strings.HasPrefix(url, "http") {
		return nil
	}
	username := os.Getenv(tokenUserEnvVar)
	if username == "" {
		username = "git"
	}
	return &http.BasicAuth{Username: username, Password: token}
}

func exists(location string) bool {
	_, err := os.Stat(location)
	return err == nil
}

func lines(output string) []string {
	var result []string
	for _, line := range strings.Split(output, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			result = append(result, line)
		}
	}
	return result
}
