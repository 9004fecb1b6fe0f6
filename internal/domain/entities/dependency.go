package entities

import (
	"fmt"
	"path"
	"slices"
	"strings"
)

// DependencyRecord identifies one external dependency declared by a manifest
// or by a .gitmodules file.
type DependencyRecord struct {
	Path            string   // Slash-separated location relative to the declaring checkout
	URL             string   // Source repository (may be rewritten for stale mirrors)
	PinnedRevision  string   // Exact 40-hex commit, empty when unpinned
	Ref             string   // Symbolic ref used when no exact hash is pinned
	RevisionOrdinal int      // Legacy numeric revision, only used for reconciliation
	Platforms       []string // Platform tags; empty means all platforms
	ManifestPrefix  string   // Location of the nested manifest that declared it
	FromManifest    bool     // Declared by a manifest, needs "submodule add"
}

// Segments returns the ordered path segments of the record location.
func (d DependencyRecord) Segments() []string {
	return SplitPath(d.Path)
}

// IsPinned reports whether the record carries an exact revision.
func (d DependencyRecord) IsPinned() bool {
	return d.PinnedRevision != ""
}

// HasPlatform reports whether the tag appears in the record platform set.
func (d DependencyRecord) HasPlatform(tag string) bool {
	return slices.Contains(d.Platforms, tag)
}

// PlatformLabel renders the platform set for diagnostics.
func (d DependencyRecord) PlatformLabel() string {
	if len(d.Platforms) == 0 {
		return PlatformAll
	}
	return strings.Join(d.Platforms, ",")
}

// Revision returns the most precise revision description available.
func (d DependencyRecord) Revision() string {
	switch {
	case d.PinnedRevision != "":
		return d.PinnedRevision
	case d.Ref != "" && d.RevisionOrdinal > 0:
		return fmt.Sprintf("%s@%d", d.Ref, d.RevisionOrdinal)
	case d.Ref != "":
		return d.Ref
	case d.RevisionOrdinal > 0:
		return fmt.Sprintf("@%d", d.RevisionOrdinal)
	default:
		return ""
	}
}

// WithPrefix returns a copy of the record relocated below the given manifest prefix.
func (d DependencyRecord) WithPrefix(prefix string) DependencyRecord {
	prefix = CleanPath(prefix)
	if prefix == "" {
		return d
	}
	d.Path = path.Join(prefix, d.Path)
	d.ManifestPrefix = prefix
	d.Platforms = slices.Clone(d.Platforms)
	return d
}

// CleanPath normalizes a slash-separated location, dropping "./" and trailing slashes.
func CleanPath(location string) string {
	location = strings.ReplaceAll(strings.TrimSpace(location), "\\", "/")
	if location == "" {
		return ""
	}
	cleaned := path.Clean(location)
	if cleaned == "." {
		return ""
	}
	return strings.TrimPrefix(cleaned, "./")
}

// SplitPath splits a location into its non-empty segments.
func SplitPath(location string) []string {
	cleaned := CleanPath(location)
	if cleaned == "" {
		return nil
	}
	return strings.Split(cleaned, "/")
}

// IsWithin reports whether location equals dir or lies below it.
func IsWithin(location, dir string) bool {
	location = CleanPath(location)
	dir = CleanPath(dir)
	if dir == "" {
		return true
	}
	return location == dir || strings.HasPrefix(location, dir+"/")
}
