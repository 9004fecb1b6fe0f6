//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
	"github.com/rios0rios0/upstreamsync/internal/domain/repositories"
)

// VCSCall records a single invocation on SpyVCSRepository.
type VCSCall struct {
	Operation string
	Dir       string
	Args      []string
}

// SpyVCSRepository implements repositories.VCSRepository as an in-memory spy.
// Checkouts move the per-directory revision so lifecycle tests can follow the
// state of every working copy. Directory keys are cleaned with filepath.Clean.
type SpyVCSRepository struct {
	mu sync.Mutex

	// --- state ---
	Revisions  map[string]string // dir -> checked out revision
	FetchHeads map[string]string // dir -> revision FETCH_HEAD points to
	Pending    map[string]entities.PendingOperations
	Submodules map[string][]entities.DependencyRecord // dir -> .gitmodules
	Index      map[string]string                      // dir + "|" + path -> gitlink revision
	Tracked    map[string][]string                    // dir -> tracked files
	LogHits    map[string][]string                    // dir + "|" + pattern -> hashes
	RemoteRefs map[string]bool                        // url + " " + ref -> advertised

	// --- FormatPatch ---
	Patches map[string]string // file name -> mail-formatted content written on FormatPatch

	// --- errors ---
	FetchErrs    map[string]error // ref -> error
	ApplyErrs    map[string]error // patch file -> error
	CheckoutErrs map[string]error // target -> error
	AbortErr     error
	CommitErr    error

	Calls []VCSCall
}

var _ repositories.VCSRepository = (*SpyVCSRepository)(nil)

// NewSpyVCSRepository creates a spy with empty state.
func NewSpyVCSRepository() *SpyVCSRepository {
	return &SpyVCSRepository{
		Revisions:    map[string]string{},
		FetchHeads:   map[string]string{},
		Pending:      map[string]entities.PendingOperations{},
		Submodules:   map[string][]entities.DependencyRecord{},
		Index:        map[string]string{},
		Tracked:      map[string][]string{},
		Patches:      map[string]string{},
		LogHits:      map[string][]string{},
		RemoteRefs:   map[string]bool{},
		FetchErrs:    map[string]error{},
		ApplyErrs:    map[string]error{},
		CheckoutErrs: map[string]error{},
	}
}

// IndexKey builds the key of the Index map.
func IndexKey(dir, location string) string {
	return filepath.Clean(dir) + "|" + location
}

// LogKey builds the key of the LogHits map.
func LogKey(dir, pattern string) string {
	return filepath.Clean(dir) + "|" + pattern
}

// CallsTo returns the recorded calls of one operation, in order.
func (s *SpyVCSRepository) CallsTo(operation string) []VCSCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	var calls []VCSCall
	for _, call := range s.Calls {
		if call.Operation == operation {
			calls = append(calls, call)
		}
	}
	return calls
}

// Operations returns the name of every recorded call, in order.
func (s *SpyVCSRepository) Operations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	operations := make([]string, 0, len(s.Calls))
	for _, call := range s.Calls {
		operations = append(operations, call.Operation)
	}
	return operations
}

func (s *SpyVCSRepository) record(operation, dir string, args ...string) {
	s.Calls = append(s.Calls, VCSCall{Operation: operation, Dir: filepath.Clean(dir), Args: args})
}

func (s *SpyVCSRepository) CurrentRevision(_ context.Context, dir string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("CurrentRevision", dir)
	return s.Revisions[filepath.Clean(dir)], nil
}

func (s *SpyVCSRepository) PendingOperations(_ context.Context, dir string) (entities.PendingOperations, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("PendingOperations", dir)
	return s.Pending[filepath.Clean(dir)], nil
}

func (s *SpyVCSRepository) Abort(_ context.Context, dir string, operation entities.PendingOperation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("Abort", dir, string(operation))
	return s.AbortErr
}

func (s *SpyVCSRepository) Fetch(_ context.Context, dir, remote, ref string, depth int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("Fetch", dir, remote, ref, strconv.Itoa(depth))
	return s.FetchErrs[ref]
}

func (s *SpyVCSRepository) Checkout(_ context.Context, dir, target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("Checkout", dir, target)
	if err := s.CheckoutErrs[target]; err != nil {
		return err
	}
	key := filepath.Clean(dir)
	if target == "FETCH_HEAD" {
		s.Revisions[key] = s.FetchHeads[key]
	} else {
		s.Revisions[key] = target
	}
	return nil
}

func (s *SpyVCSRepository) Reset(_ context.Context, dir string, mode entities.ResetMode, target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("Reset", dir, string(mode), target)
	if target != "" {
		s.Revisions[filepath.Clean(dir)] = target
	}
	return nil
}

func (s *SpyVCSRepository) Clean(_ context.Context, dir string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("Clean", dir)
	return nil
}

func (s *SpyVCSRepository) Log(_ context.Context, dir, pattern string, limit int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("Log", dir, pattern, strconv.Itoa(limit))
	hits := s.LogHits[LogKey(dir, pattern)]
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (s *SpyVCSRepository) LsRemote(_ context.Context, url, ref string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("LsRemote", "", url, ref)
	return s.RemoteRefs[url+" "+ref], nil
}

func (s *SpyVCSRepository) AddSubmodule(_ context.Context, dir, url, location string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("AddSubmodule", dir, url, location)
	return nil
}

func (s *SpyVCSRepository) InitSubmodule(_ context.Context, dir, location string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("InitSubmodule", dir, location)
	return nil
}

func (s *SpyVCSRepository) UpdateSubmodule(_ context.Context, dir, location string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("UpdateSubmodule", dir, location)
	return nil
}

func (s *SpyVCSRepository) SyncSubmodule(_ context.Context, dir, location string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("SyncSubmodule", dir, location)
	return nil
}

func (s *SpyVCSRepository) IndexRevision(_ context.Context, dir, location string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("IndexRevision", dir, location)
	return s.Index[IndexKey(dir, location)], nil
}

func (s *SpyVCSRepository) ListTrackedFiles(_ context.Context, dir string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("ListTrackedFiles", dir)
	return s.Tracked[filepath.Clean(dir)], nil
}

func (s *SpyVCSRepository) ListSubmodules(_ context.Context, dir string) ([]entities.DependencyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("ListSubmodules", dir)
	return s.Submodules[filepath.Clean(dir)], nil
}

func (s *SpyVCSRepository) FormatPatch(_ context.Context, dir, base, outputDir string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("FormatPatch", dir, base, outputDir)
	files := make([]string, 0, len(s.Patches))
	for name, content := range s.Patches {
		file := filepath.Join(outputDir, name)
		if err := os.WriteFile(file, []byte(content), 0o600); err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	sort.Strings(files)
	return files, nil
}

func (s *SpyVCSRepository) ApplyMailbox(_ context.Context, dir, patchFile string, strip int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("ApplyMailbox", dir, patchFile, strconv.Itoa(strip))
	return s.ApplyErrs[patchFile]
}

func (s *SpyVCSRepository) CommitAll(_ context.Context, dir, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("CommitAll", dir, message)
	return s.CommitErr
}

func (s *SpyVCSRepository) Unstage(_ context.Context, dir, location string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("Unstage", dir, location)
	return nil
}
