//go:build unit

package commands_test

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/upstreamsync/internal/domain/commands"
	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
	"github.com/rios0rios0/upstreamsync/test/domain/entitybuilders"
	doubles "github.com/rios0rios0/upstreamsync/test/infrastructure/repositorydoubles"
)

var (
	angleHash   = strings.Repeat("a", 40)
	glslangHash = strings.Repeat("c", 40)
)

func TestResolveCommandExecute(t *testing.T) {
	t.Parallel()

	t.Run("should relocate the records of nested manifests below their prefix", func(t *testing.T) {
		// given
		manifests := doubles.NewStubManifestRepository().
			Put(filepath.Join("work", ".DEPS.git"), &entities.Manifest{
				Deps: map[string]string{
					"src/third_party/angle": "https://x/angle.git@" + angleHash,
					"src/tools/gyp":         "https://x/gyp.git@refs/heads/main",
				},
				RecurseDeps: []string{"src/third_party/angle", "src/tools/gyp"},
			}).
			Put(filepath.Join("work", "third_party", "angle", ".DEPS.git"), &entities.Manifest{
				Deps: map[string]string{"src/third_party/glslang": "https://x/glslang.git@" + glslangHash},
			})
		cmd := commands.NewResolveCommand(manifests, doubles.NewSpyVCSRepository())

		// when
		resolution, err := cmd.Execute(context.Background(), newSettings("work"), "work")

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{
			"third_party/angle", "third_party/angle/third_party/glslang", "tools/gyp",
		}, resolution.Paths())
		nested := resolution["third_party/angle/third_party/glslang"]
		assert.Equal(t, glslangHash, nested.PinnedRevision)
		assert.Equal(t, "third_party/angle", nested.ManifestPrefix)
		assert.Contains(t, manifests.Loaded, filepath.Join("work", "tools", "gyp", ".DEPS.git"))
	})

	t.Run("should return a missing top-level manifest as not found", func(t *testing.T) {
		// given
		cmd := commands.NewResolveCommand(doubles.NewStubManifestRepository(), doubles.NewSpyVCSRepository())

		// when
		_, err := cmd.Execute(context.Background(), newSettings("work"), "work")

		// then
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("should reconcile duplicate paths across platform sections", func(t *testing.T) {
		// given
		manifests := doubles.NewStubManifestRepository().
			Put(filepath.Join("work", ".DEPS.git"), &entities.Manifest{
				Deps: map[string]string{"src/third_party/angle": "https://x/angle.git@refs/heads/main"},
				DepsOS: map[string]map[string]string{
					"win": {"src/third_party/angle": "https://x/angle.git@" + angleHash},
				},
			})
		cmd := commands.NewResolveCommand(manifests, doubles.NewSpyVCSRepository())

		// when
		resolution, err := cmd.Execute(context.Background(), newSettings("work"), "work")

		// then
		require.NoError(t, err)
		require.Len(t, resolution, 1)
		assert.Equal(t, angleHash, resolution["third_party/angle"].PinnedRevision)
	})

	t.Run("should fail when a newer record outside lagging platforms is on another branch", func(t *testing.T) {
		// given
		manifests := doubles.NewStubManifestRepository().
			Put(filepath.Join("work", ".DEPS.git"), &entities.Manifest{
				Deps: map[string]string{"src/v8": "https://x/v8.git@refs/heads/main"},
				DepsOS: map[string]map[string]string{
					"android": {"src/v8": "https://x/branches/1700/v8@300"},
				},
			})
		cmd := commands.NewResolveCommand(manifests, doubles.NewSpyVCSRepository())

		// when
		_, err := cmd.Execute(context.Background(), newSettings("work"), "work")

		// then
		var mismatch *entities.BranchMismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, "v8", mismatch.Path)
	})

	t.Run("should keep only mirrored records with the mirror URL and pins", func(t *testing.T) {
		// given
		mirrorHash := strings.Repeat("d", 40)
		manifests := doubles.NewStubManifestRepository().
			Put(filepath.Join("work", ".DEPS.git"), &entities.Manifest{
				Deps: map[string]string{
					"src/v8":        "https://x/v8.git@refs/heads/main",
					"src/tools/gyp": "https://x/gyp.git@" + angleHash,
					"src/private":   "https://x/private.git@refs/heads/main",
				},
			}).
			Put(filepath.Join("work", "DEPS.mirror"), &entities.Manifest{
				Deps: map[string]string{
					"src/v8":        "https://mirror/v8.git@" + mirrorHash,
					"src/tools/gyp": "https://mirror/gyp.git@" + glslangHash,
				},
			})
		settings := newSettings("work")
		settings.Manifest.MirrorFile = "DEPS.mirror"
		cmd := commands.NewResolveCommand(manifests, doubles.NewSpyVCSRepository())

		// when
		resolution, err := cmd.Execute(context.Background(), settings, "work")

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"tools/gyp", "v8"}, resolution.Paths())
		assert.Equal(t, "https://mirror/v8.git", resolution["v8"].URL)
		assert.Equal(t, mirrorHash, resolution["v8"].PinnedRevision)
		assert.Equal(t, angleHash, resolution["tools/gyp"].PinnedRevision)
	})

	t.Run("should fail when a followed ref is not advertised by its remote", func(t *testing.T) {
		// given
		manifests := doubles.NewStubManifestRepository().
			Put(filepath.Join("work", ".DEPS.git"), &entities.Manifest{
				Deps: map[string]string{
					"src/v8":   "https://x/v8.git@refs/heads/main",
					"src/skia": "https://x/skia.git@refs/heads/gone",
				},
			})
		vcs := doubles.NewSpyVCSRepository()
		vcs.RemoteRefs["https://x/v8.git refs/heads/main"] = true
		settings := newSettings("work")
		settings.Manifest.VerifyRemoteRefs = true
		cmd := commands.NewResolveCommand(manifests, vcs)

		// when
		_, err := cmd.Execute(context.Background(), settings, "work")

		// then
		var fetchErr *entities.RemoteFetchError
		require.ErrorAs(t, err, &fetchErr)
		assert.Equal(t, "https://x/skia.git", fetchErr.Remote)
		assert.Equal(t, "refs/heads/gone", fetchErr.Ref)
	})

	t.Run("should drop denied paths", func(t *testing.T) {
		// given
		manifests := doubles.NewStubManifestRepository().
			Put(filepath.Join("work", ".DEPS.git"), &entities.Manifest{
				Deps: map[string]string{
					"src/v8":                  "https://x/v8.git@" + angleHash,
					"src/third_party/WebKit":  "https://x/webkit.git@" + angleHash,
					"src/third_party/icu/out": "https://x/icu.git@" + angleHash,
				},
			})
		settings := newSettings("work")
		settings.Manifest.Deny = []string{"third_party/WebKit", "*/icu/*"}
		cmd := commands.NewResolveCommand(manifests, doubles.NewSpyVCSRepository())

		// when
		resolution, err := cmd.Execute(context.Background(), settings, "work")

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"v8"}, resolution.Paths())
	})
}

func TestRewriteURLs(t *testing.T) {
	t.Parallel()

	t.Run("should rewrite only records following a ref, first matching rule wins", func(t *testing.T) {
		// given
		records := []entities.DependencyRecord{
			entitybuilders.NewDependencyRecordBuilder().
				WithPath("a").WithURL("https://old.example/a.git").WithRef("refs/heads/main").BuildRecord(),
			entitybuilders.NewDependencyRecordBuilder().
				WithPath("b").WithURL("https://old.example/b.git").WithPinnedRevision(angleHash).BuildRecord(),
		}
		rules := []entities.URLRewrite{
			{From: "old.example", To: "new.example"},
			{From: "https://", To: "git://"},
		}

		// when
		rewritten := commands.RewriteURLs(records, rules)

		// then
		assert.Equal(t, "https://new.example/a.git", rewritten[0].URL)
		assert.Equal(t, "https://old.example/b.git", rewritten[1].URL)
	})
}
