//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"slices"

	testkit "github.com/rios0rios0/testkit/pkg/test"

	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
)

// DependencyRecordBuilder helps create test dependency records with a fluent interface.
type DependencyRecordBuilder struct {
	*testkit.BaseBuilder
	path         string
	url          string
	pinned       string
	ref          string
	ordinal      int
	platforms    []string
	prefix       string
	fromManifest bool
}

// NewDependencyRecordBuilder creates a new builder with sensible defaults.
func NewDependencyRecordBuilder() *DependencyRecordBuilder {
	return &DependencyRecordBuilder{
		BaseBuilder:  testkit.NewBaseBuilder(),
		path:         "third_party/test",
		url:          "https://example.com/test.git",
		fromManifest: true,
	}
}

// WithPath sets the dependency path.
func (b *DependencyRecordBuilder) WithPath(location string) *DependencyRecordBuilder {
	b.path = location
	return b
}

// WithURL sets the remote URL.
func (b *DependencyRecordBuilder) WithURL(url string) *DependencyRecordBuilder {
	b.url = url
	return b
}

// WithPinnedRevision sets the exact revision.
func (b *DependencyRecordBuilder) WithPinnedRevision(revision string) *DependencyRecordBuilder {
	b.pinned = revision
	return b
}

// WithRef sets the symbolic ref.
func (b *DependencyRecordBuilder) WithRef(ref string) *DependencyRecordBuilder {
	b.ref = ref
	return b
}

// WithOrdinal sets the legacy revision ordinal.
func (b *DependencyRecordBuilder) WithOrdinal(ordinal int) *DependencyRecordBuilder {
	b.ordinal = ordinal
	return b
}

// WithPlatforms sets the platform tags.
func (b *DependencyRecordBuilder) WithPlatforms(platforms ...string) *DependencyRecordBuilder {
	b.platforms = platforms
	return b
}

// WithManifestPrefix sets the prefix of the declaring manifest.
func (b *DependencyRecordBuilder) WithManifestPrefix(prefix string) *DependencyRecordBuilder {
	b.prefix = prefix
	return b
}

// FromGitmodules marks the record as read from .gitmodules.
func (b *DependencyRecordBuilder) FromGitmodules() *DependencyRecordBuilder {
	b.fromManifest = false
	return b
}

// Build creates the record (satisfies testkit.Builder interface).
func (b *DependencyRecordBuilder) Build() interface{} {
	return b.BuildRecord()
}

// BuildRecord creates the record with a concrete return type.
func (b *DependencyRecordBuilder) BuildRecord() entities.DependencyRecord {
	return entities.DependencyRecord{
		Path:            b.path,
		URL:             b.url,
		PinnedRevision:  b.pinned,
		Ref:             b.ref,
		RevisionOrdinal: b.ordinal,
		Platforms:       slices.Clone(b.platforms),
		ManifestPrefix:  b.prefix,
		FromManifest:    b.fromManifest,
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *DependencyRecordBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.path = "third_party/test"
	b.url = "https://example.com/test.git"
	b.pinned = ""
	b.ref = ""
	b.ordinal = 0
	b.platforms = nil
	b.prefix = ""
	b.fromManifest = true
	return b
}

// Clone creates a deep copy of the DependencyRecordBuilder.
func (b *DependencyRecordBuilder) Clone() testkit.Builder {
	return &DependencyRecordBuilder{
		BaseBuilder:  b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		path:         b.path,
		url:          b.url,
		pinned:       b.pinned,
		ref:          b.ref,
		ordinal:      b.ordinal,
		platforms:    slices.Clone(b.platforms),
		prefix:       b.prefix,
		fromManifest: b.fromManifest,
	}
}
