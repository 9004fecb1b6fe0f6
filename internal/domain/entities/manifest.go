package entities

import (
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"
)

const (
	branchesMarker   = "branches"
	trunkMarker      = "trunk"
	branchHeadsRef   = "refs/branch-heads/"
	headsRef         = "refs/heads/"
	revisionSplitter = "@"

	// DefaultBranchName is used for "trunk" markers when no default branch is configured.
	DefaultBranchName = "master"
)

var (
	pinnedRevisionPattern = regexp.MustCompile(`^[0-9a-fA-F]{40}$`)
	ordinalPattern        = regexp.MustCompile(`^[0-9]+$`)
)

// Manifest is the normalized content of a dependency-declaration document.
type Manifest struct {
	Source      string                       // File name or label, used in diagnostics
	Vars        map[string]string            // "vars" mapping (string values only)
	Deps        map[string]string            // "deps": path -> "url@revision-or-ref"
	DepsOS      map[string]map[string]string // "deps_os": platform -> same-shaped mapping
	RecurseDeps []string                     // "recursedeps": nested manifest locations
}

// ManifestOptions controls how manifest paths and revisions are normalized.
type ManifestOptions struct {
	RootPrefix    string   // Reserved prefix of the primary checkout (e.g. "src")
	KeepPrefixes  []string // Paths outside the root prefix that are kept verbatim
	DefaultBranch string   // Branch name used for legacy "trunk" markers
}

// Validate checks that the document defines a deps mapping.
func (m *Manifest) Validate() error {
	if m.Deps == nil {
		return &ManifestParseError{Source: m.Source, Reason: "document does not define a deps mapping"}
	}
	return nil
}

// Records converts the manifest into dependency records sorted by path, with
// the platform-independent section first and deps_os sections ordered by tag.
func (m *Manifest) Records(opts ManifestOptions) []DependencyRecord {
	records := recordsFromScope(m.Deps, nil, opts)
	for _, tag := range sortedKeys(m.DepsOS) {
		records = append(records, recordsFromScope(m.DepsOS[tag], []string{tag}, opts)...)
	}
	return records
}

func recordsFromScope(scope map[string]string, platforms []string, opts ManifestOptions) []DependencyRecord {
	var records []DependencyRecord
	for _, rawPath := range sortedKeys(scope) {
		location, ok := opts.NormalizePath(rawPath)
		if !ok {
			continue
		}
		record := ParseDependencyValue(location, scope[rawPath], opts.DefaultBranch)
		if len(platforms) > 0 {
			record.Platforms = append([]string(nil), platforms...)
		}
		record.FromManifest = true
		records = append(records, record)
	}
	return records
}

// NormalizePath applies the root-prefix rules. The primary checkout itself and
// paths outside of it are dropped unless an allow-listed prefix keeps them.
func (o ManifestOptions) NormalizePath(rawPath string) (string, bool) {
	location := CleanPath(rawPath)
	if location == "" {
		return "", false
	}

	for _, keep := range o.KeepPrefixes {
		if IsWithin(location, keep) {
			return location, true
		}
	}

	root := CleanPath(o.RootPrefix)
	if root == "" {
		return location, true
	}
	if location == root {
		return "", false
	}
	if rest, found := strings.CutPrefix(location, root+"/"); found {
		return rest, true
	}
	return "", false
}

// ParseDependencyValue splits a "url@revision-or-ref" value into a record for
// the given location. Exactly 40 hex characters pin the revision, digits are a
// legacy ordinal whose branch is inferred from the URL, anything else is a
// symbolic ref passed through branch inference.
func ParseDependencyValue(location, value, defaultBranch string) DependencyRecord {
	record := DependencyRecord{Path: location}

	url, revision := value, ""
	// a revision never contains ':', which keeps scp-like "git@host:repo" intact
	if idx := strings.LastIndex(value, revisionSplitter); idx > 0 && !strings.Contains(value[idx+1:], ":") {
		url, revision = value[:idx], value[idx+1:]
	}
	record.URL = strings.TrimSpace(url)
	revision = strings.TrimSpace(revision)

	switch {
	case revision == "":
	case pinnedRevisionPattern.MatchString(revision):
		record.PinnedRevision = strings.ToLower(revision)
	case ordinalPattern.MatchString(revision):
		record.RevisionOrdinal, _ = strconv.Atoi(revision)
		if ref, ok := InferBranchRef(location, record.URL, defaultBranch); ok {
			record.Ref = ref
		}
	default:
		if ref, ok := InferBranchRef(location, revision, defaultBranch); ok {
			record.Ref = ref
		} else {
			record.Ref = revision
		}
	}
	return record
}

// InferBranchRef derives a namespaced branch ref from a legacy branch path such
// as "https://svn.example/branches/42/third_party/widget" for the dependency
// "third_party/widget". It strips the branches marker, maps "trunk" onto the
// default branch and removes the dependency's tail segments from the end; the
// remainder is the branch token.
func InferBranchRef(location, source, defaultBranch string) (string, bool) {
	segments := strings.Split(strings.Trim(source, "/"), "/")

	start := -1
	for i, segment := range segments {
		if segment == branchesMarker && i+1 < len(segments) {
			start = i + 1
		}
	}

	isTrunk := false
	if start < 0 {
		if defaultBranch == "" {
			defaultBranch = DefaultBranchName
		}
		if idx := slices.Index(segments, trunkMarker); idx >= 0 {
			segments[idx] = defaultBranch
			start = idx
			isTrunk = true
		}
	}
	if start < 0 {
		return "", false
	}

	remainder := segments[start:]
	tail := SplitPath(location)
	if len(tail) == 0 {
		return "", false
	}

	matched := 0
	for matched < len(tail) && matched < len(remainder) {
		if remainder[len(remainder)-1-matched] != tail[len(tail)-1-matched] {
			break
		}
		matched++
	}
	if matched == 0 || matched >= len(remainder) {
		return "", false
	}

	branch := remainder[:len(remainder)-matched]
	if isTrunk {
		return headsRef + branch[0], true
	}
	// a trailing root checkout segment ("1750/src") is not part of the branch token
	if len(branch) > 1 && branch[len(branch)-1] == "src" {
		branch = branch[:len(branch)-1]
	}
	return branchHeadsRef + strings.Join(branch, "/"), true
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
