//go:build unit

package commands_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/upstreamsync/internal/domain/commands"
	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
	"github.com/rios0rios0/upstreamsync/test/domain/commanddoubles"
	"github.com/rios0rios0/upstreamsync/test/domain/entitybuilders"
	doubles "github.com/rios0rios0/upstreamsync/test/infrastructure/repositorydoubles"
)

func TestInitializeCommandExecute(t *testing.T) {
	t.Parallel()

	t.Run("should initialize only the snapshot when no mode is given", func(t *testing.T) {
		// given
		settings := newSettings(t.TempDir())
		vcs := doubles.NewSpyVCSRepository()
		snapshot := entitybuilders.NewDependencyRecordBuilder().
			WithPath("src/3rdparty").WithURL("https://x/3rdparty.git").FromGitmodules().BuildRecord()
		vcs.Submodules[settings.Layout.Root] = []entities.DependencyRecord{snapshot}
		submodules := &commanddoubles.SpySubmodulesCommand{}
		patch := &commanddoubles.StubPatchCommand{}
		cmd := commands.NewInitializeCommand(vcs, submodules, patch)

		// when
		err := cmd.Execute(context.Background(), settings, commands.InitializeOptions{})

		// then
		require.NoError(t, err)
		require.Len(t, submodules.Initialized, 1)
		assert.Equal(t, snapshot, submodules.Initialized[0])
		assert.Zero(t, patch.ExecuteCallCount)
	})

	t.Run("should register the snapshot when it is not listed yet", func(t *testing.T) {
		// given
		settings := newSettings(t.TempDir())
		submodules := &commanddoubles.SpySubmodulesCommand{}
		cmd := commands.NewInitializeCommand(doubles.NewSpyVCSRepository(), submodules, &commanddoubles.StubPatchCommand{})

		// when
		err := cmd.Execute(context.Background(), settings, commands.InitializeOptions{Snapshot: true})

		// then
		require.NoError(t, err)
		require.Len(t, submodules.Initialized, 1)
		assert.Equal(t, "src/3rdparty", submodules.Initialized[0].Path)
	})

	t.Run("should check out the tools and the primary codebase, unstage them and patch", func(t *testing.T) {
		// given
		settings := newSettings(t.TempDir())
		settings.Tools = []entities.ToolSettings{{Name: "gn", URL: "https://x/gn.git", Version: "v1.2.0"}}
		vcs := doubles.NewSpyVCSRepository()
		vcs.Submodules[settings.Layout.Root] = []entities.DependencyRecord{
			entitybuilders.NewDependencyRecordBuilder().WithPath("src/3rdparty_upstream/gn").FromGitmodules().BuildRecord(),
		}
		submodules := &commanddoubles.SpySubmodulesCommand{}
		patch := &commanddoubles.StubPatchCommand{}
		cmd := commands.NewInitializeCommand(vcs, submodules, patch)

		// when
		err := cmd.Execute(context.Background(), settings, commands.InitializeOptions{Upstream: true})

		// then
		require.NoError(t, err)
		require.Len(t, submodules.Initialized, 2)
		assert.Equal(t, "src/3rdparty_upstream/gn", submodules.Initialized[0].Path)
		assert.Equal(t, "refs/tags/v1.2.0", submodules.Initialized[0].Ref)
		assert.False(t, submodules.Initialized[0].FromManifest)
		assert.Equal(t, "src/3rdparty_upstream/chromium", submodules.Initialized[1].Path)
		assert.True(t, submodules.Initialized[1].FromManifest)

		unstaged := vcs.CallsTo("Unstage")
		require.Len(t, unstaged, 2)
		assert.Equal(t, []string{"src/3rdparty_upstream/gn"}, unstaged[0].Args)
		assert.Equal(t, []string{"src/3rdparty_upstream/chromium"}, unstaged[1].Args)
		assert.Equal(t, 1, patch.ExecuteCallCount)
	})

	t.Run("should leave a baseline upstream unpatched", func(t *testing.T) {
		// given
		settings := newSettings(t.TempDir())
		submodules := &commanddoubles.SpySubmodulesCommand{}
		patch := &commanddoubles.StubPatchCommand{}
		cmd := commands.NewInitializeCommand(doubles.NewSpyVCSRepository(), submodules, patch)

		// when
		err := cmd.Execute(context.Background(), settings,
			commands.InitializeOptions{Upstream: true, BaselineUpstream: true})

		// then
		require.NoError(t, err)
		assert.Len(t, submodules.Initialized, 1)
		assert.Zero(t, patch.ExecuteCallCount)
	})

	t.Run("should stop at the first failing dependency", func(t *testing.T) {
		// given
		settings := newSettings(t.TempDir())
		settings.Tools = []entities.ToolSettings{{Name: "gn", URL: "https://x/gn.git", Ref: "refs/heads/main"}}
		vcs := doubles.NewSpyVCSRepository()
		submodules := &commanddoubles.SpySubmodulesCommand{InitializeErr: errors.New("fetch failed")}
		patch := &commanddoubles.StubPatchCommand{}
		cmd := commands.NewInitializeCommand(vcs, submodules, patch)

		// when
		err := cmd.Execute(context.Background(), settings, commands.InitializeOptions{Upstream: true})

		// then
		require.Error(t, err)
		assert.Len(t, submodules.Initialized, 1)
		assert.Empty(t, vcs.CallsTo("Unstage"))
		assert.Zero(t, patch.ExecuteCallCount)
	})

	t.Run("should require a version for the upstream checkout", func(t *testing.T) {
		// given
		settings := newSettings(t.TempDir())
		settings.Version = ""
		submodules := &commanddoubles.SpySubmodulesCommand{}
		cmd := commands.NewInitializeCommand(doubles.NewSpyVCSRepository(), submodules, &commanddoubles.StubPatchCommand{})

		// when
		err := cmd.Execute(context.Background(), settings, commands.InitializeOptions{Upstream: true})

		// then
		require.Error(t, err)
		assert.Empty(t, submodules.Initialized)
	})
}
