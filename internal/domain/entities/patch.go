package entities

import (
	"bufio"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/sourcegraph/go-diff/diff"
)

const (
	subjectHeader   = "Subject:"
	diffStart       = "diff --git "
	mailSignature   = "\n-- \n"
	PatchFileSuffix = ".patch"
)

var (
	ownerTagPattern    = regexp.MustCompile(`<([^<>]+)>`)
	patchNumberPattern = regexp.MustCompile(`^(\d+)-`)
)

// PatchEntry is one unit of divergence between the snapshot and the baseline.
type PatchEntry struct {
	Sequence int    // Position in the generated series
	OwnerTag string // Dependency path the patch is annotated against
	File     string // Patch file on disk
	Content  string // Mail-formatted diff, opaque except for headers and changed paths
}

// Name returns the patch file name without its directory.
func (p PatchEntry) Name() string {
	return filepath.Base(p.File)
}

// ParsePatchSequence extracts the zero-padded sequence number from a series file name.
func ParsePatchSequence(fileName string) (int, error) {
	match := patchNumberPattern.FindStringSubmatch(filepath.Base(fileName))
	if match == nil {
		return 0, fmt.Errorf("patch file %q has no sequence prefix", fileName)
	}
	return strconv.Atoi(match[1])
}

// ParseOwnerTag reads the Subject header of a patch, unfolding continuation
// lines, and returns its angle-bracket owner token. Scanning stops at the first
// diff.
func ParseOwnerTag(content string) (string, bool) {
	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var subject strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, diffStart) {
			break
		}
		if subject.Len() > 0 {
			if !strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "\t") {
				break
			}
			subject.WriteString(line)
			continue
		}
		if strings.HasPrefix(line, subjectHeader) {
			subject.WriteString(line)
		}
	}

	match := ownerTagPattern.FindStringSubmatch(subject.String())
	if match == nil {
		return "", false
	}
	owner := CleanPath(match[1])
	return owner, owner != ""
}

// ChangedPaths returns the files touched by the patch body, without the a/ and
// b/ prefixes, in the order they appear.
func (p PatchEntry) ChangedPaths() ([]string, error) {
	body := p.Content
	start := strings.Index(body, diffStart)
	if start < 0 {
		return nil, nil
	}
	body = body[start:]
	if end := strings.LastIndex(body, mailSignature); end >= 0 {
		body = body[:end+1]
	}

	fileDiffs, err := diff.NewMultiFileDiffReader(strings.NewReader(body)).ReadAllFiles()
	if err != nil {
		return nil, fmt.Errorf("parsing diff of %s: %w", p.Name(), err)
	}

	seen := make(map[string]bool)
	var paths []string
	for _, fileDiff := range fileDiffs {
		for _, name := range []string{fileDiff.OrigName, fileDiff.NewName} {
			if name == "" || name == "/dev/null" {
				continue
			}
			name = strings.TrimPrefix(name, "a/")
			name = strings.TrimPrefix(name, "b/")
			if !seen[name] {
				seen[name] = true
				paths = append(paths, name)
			}
		}
	}
	return paths, nil
}

// PatchSeries is the annotated output of one generation pass.
type PatchSeries struct {
	Dir          string
	PrimaryOwner string
	Entries      []PatchEntry
}

// OwnerDir maps an owner tag onto a directory relative to the upstream root.
// Tags naming the primary codebase or lying below it are taken as they are,
// other tags are relative to the primary codebase.
func (s *PatchSeries) OwnerDir(tag string) string {
	tag = CleanPath(tag)
	primary := CleanPath(s.PrimaryOwner)
	if primary == "" || IsWithin(tag, primary) {
		return tag
	}
	return primary + "/" + tag
}

// StripCount is the number of leading path components git must drop when
// applying a patch of the given owner inside the owner's working copy: the
// "a/" prefix plus one per owner directory segment.
func (s *PatchSeries) StripCount(tag string) int {
	return len(SplitPath(s.OwnerDir(tag))) + 1
}

// Owners returns the owners in apply order: primary owner first, the rest in
// the order of their first patch.
func (s *PatchSeries) Owners() []string {
	entries := s.sortedEntries()
	primary := CleanPath(s.PrimaryOwner)

	var owners []string
	seen := make(map[string]bool)
	for _, entry := range entries {
		if entry.OwnerTag == primary && !seen[primary] {
			owners = append(owners, primary)
			seen[primary] = true
		}
	}
	for _, entry := range entries {
		if !seen[entry.OwnerTag] {
			owners = append(owners, entry.OwnerTag)
			seen[entry.OwnerTag] = true
		}
	}
	return owners
}

// ForOwner returns the owner's patches in ascending sequence order.
func (s *PatchSeries) ForOwner(tag string) []PatchEntry {
	var result []PatchEntry
	for _, entry := range s.sortedEntries() {
		if entry.OwnerTag == tag {
			result = append(result, entry)
		}
	}
	return result
}

func (s *PatchSeries) sortedEntries() []PatchEntry {
	entries := append([]PatchEntry(nil), s.Entries...)
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Sequence < entries[j].Sequence })
	return entries
}

// Validate checks every patch against the registered dependency directories
// (relative to the upstream root). A changed path whose deepest enclosing
// dependency differs from the declared owner is a mismatch.
func (s *PatchSeries) Validate(dependencyDirs []string) ([]*AnnotationMismatchError, error) {
	dirs := make([]string, 0, len(dependencyDirs)+1)
	if primary := CleanPath(s.PrimaryOwner); primary != "" {
		dirs = append(dirs, primary)
	}
	for _, dir := range dependencyDirs {
		if cleaned := CleanPath(dir); cleaned != "" {
			dirs = append(dirs, cleaned)
		}
	}

	var mismatches []*AnnotationMismatchError
	for _, entry := range s.sortedEntries() {
		changed, err := entry.ChangedPaths()
		if err != nil {
			return nil, err
		}

		ownerDir := s.OwnerDir(entry.OwnerTag)
		touched := make(map[string][]string)
		for _, changedPath := range changed {
			actual := deepestDir(changedPath, append(dirs, ownerDir))
			if actual != ownerDir {
				if actual == "" {
					actual = "."
				}
				touched[actual] = append(touched[actual], changedPath)
			}
		}
		if len(touched) > 0 {
			mismatches = append(mismatches, &AnnotationMismatchError{
				Patch:   entry.Name(),
				Owner:   entry.OwnerTag,
				Touched: touched,
			})
		}
	}
	return mismatches, nil
}

func deepestDir(location string, dirs []string) string {
	best := ""
	for _, dir := range dirs {
		if IsWithin(location, dir) && len(dir) > len(best) {
			best = dir
		}
	}
	return best
}
