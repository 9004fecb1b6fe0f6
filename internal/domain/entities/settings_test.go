//go:build unit

package entities_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "upstreamsync.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o600))
	return configPath
}

func TestNewSettings(t *testing.T) {
	t.Run("should apply defaults to a minimal file", func(t *testing.T) {
		// given
		configPath := writeConfig(t, "version: 87.0.4280.144\n")

		// when
		settings, err := entities.NewSettings(configPath)

		// then
		require.NoError(t, err)
		assert.Equal(t, "chromium", settings.Upstream.Name)
		assert.Equal(t, ".DEPS.git", settings.Manifest.File)
		assert.Equal(t, "refs/tags/87.0.4280.144", settings.UpstreamRef())
		assert.Equal(t, filepath.Join("src", "3rdparty_upstream", "chromium"), settings.PrimaryPath())
		assert.Equal(t, filepath.Join("src", "3rdparty_upstream", "patches"), settings.PatchesPath())
	})

	t.Run("should expand environment variables", func(t *testing.T) {
		// given
		t.Setenv("UPSTREAMSYNC_TEST_URL", "https://mirror.example.com/src.git")
		configPath := writeConfig(t, "version: \"1.0\"\nupstream:\n  url: ${UPSTREAMSYNC_TEST_URL}\n")

		// when
		settings, err := entities.NewSettings(configPath)

		// then
		require.NoError(t, err)
		assert.Equal(t, "https://mirror.example.com/src.git", settings.Upstream.URL)
	})

	t.Run("should reject a missing version", func(t *testing.T) {
		// given
		configPath := writeConfig(t, "upstream:\n  name: chromium\n")

		// when
		_, err := entities.NewSettings(configPath)

		// then
		assert.ErrorContains(t, err, "version is required")
	})

	t.Run("should reject a tool version that is not a semver tag", func(t *testing.T) {
		// given
		configPath := writeConfig(t, "version: \"1.0\"\ntools:\n"+
			"  - name: gn\n    url: https://example.com/gn.git\n    version: latest\n")

		// when
		_, err := entities.NewSettings(configPath)

		// then
		assert.ErrorContains(t, err, "tools[0].version")
	})
}

func TestSettingsRecords(t *testing.T) {
	t.Parallel()

	t.Run("should place tools and the primary codebase under the upstream dir", func(t *testing.T) {
		// given
		settings := entities.DefaultSettings()
		settings.Version = "87.0.4280.144"
		settings.Tools = []entities.ToolSettings{
			{Name: "gn", URL: "https://example.com/gn.git", Version: "v1.8"},
			{Name: "ninja", URL: "https://example.com/ninja.git", Ref: "refs/heads/release"},
		}

		// when
		tools := settings.ToolRecords()
		primary := settings.PrimaryRecord()

		// then
		require.Len(t, tools, 2)
		assert.Equal(t, "src/3rdparty_upstream/gn", tools[0].Path)
		assert.Equal(t, "refs/tags/v1.8", tools[0].Ref)
		assert.Equal(t, "refs/heads/release", tools[1].Ref)
		assert.Equal(t, "src/3rdparty_upstream/chromium", primary.Path)
		assert.Equal(t, "refs/tags/87.0.4280.144", primary.Ref)
	})

	t.Run("should export every tool and the primary codebase by default", func(t *testing.T) {
		// given
		settings := entities.DefaultSettings()
		settings.Tools = []entities.ToolSettings{{Name: "gn"}}

		// when
		sources := settings.SnapshotSources()

		// then
		require.Len(t, sources, 2)
		assert.Equal(t, "gn", sources[0].Name)
		assert.Equal(t, "chromium", sources[1].Name)
		assert.Contains(t, sources[1].Extras, "build/util/LASTCHANGE")
		assert.Contains(t, sources[1].Exclude, ".gitmodules")
	})
}

func TestLoadSettings(t *testing.T) {
	newCheckout := func(t *testing.T, root string) {
		t.Helper()
		require.NoError(t, os.MkdirAll(filepath.Join(root, ".git"), 0o750))
	}
	isolateUserConfig := func(t *testing.T) string {
		t.Helper()
		home := t.TempDir()
		t.Setenv("HOME", home)
		t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
		userDir, err := os.UserConfigDir()
		require.NoError(t, err)
		return userDir
	}

	t.Run("should find the config in a parent directory of the checkout", func(t *testing.T) {
		// given
		isolateUserConfig(t)
		root := t.TempDir()
		newCheckout(t, root)
		require.NoError(t, os.WriteFile(
			filepath.Join(root, "upstreamsync.yaml"), []byte("version: 87.0.4280.144\n"), 0o600,
		))
		nested := filepath.Join(root, "src", "3rdparty")
		require.NoError(t, os.MkdirAll(nested, 0o750))
		t.Chdir(nested)

		// when
		settings, err := entities.LoadSettings("")

		// then
		require.NoError(t, err)
		assert.Equal(t, "87.0.4280.144", settings.Version)
	})

	t.Run("should not look above the checkout root", func(t *testing.T) {
		// given
		isolateUserConfig(t)
		outer := t.TempDir()
		require.NoError(t, os.WriteFile(
			filepath.Join(outer, "upstreamsync.yaml"), []byte("version: 87.0.4280.144\n"), 0o600,
		))
		checkout := filepath.Join(outer, "checkout")
		newCheckout(t, checkout)
		t.Chdir(checkout)

		// when
		settings, err := entities.LoadSettings("")

		// then
		require.NoError(t, err)
		assert.Empty(t, settings.Version)
		assert.Equal(t, ".DEPS.git", settings.Manifest.File)
	})

	t.Run("should fall back to the user config directory", func(t *testing.T) {
		// given
		userDir := isolateUserConfig(t)
		require.NoError(t, os.MkdirAll(filepath.Join(userDir, "upstreamsync"), 0o750))
		require.NoError(t, os.WriteFile(
			filepath.Join(userDir, "upstreamsync", "config.yaml"), []byte("version: 90.0.4430.228\n"), 0o600,
		))
		checkout := t.TempDir()
		newCheckout(t, checkout)
		t.Chdir(checkout)

		// when
		settings, err := entities.LoadSettings("")

		// then
		require.NoError(t, err)
		assert.Equal(t, "90.0.4430.228", settings.Version)
	})

	t.Run("should prefer an explicit path", func(t *testing.T) {
		// given
		isolateUserConfig(t)
		configPath := writeConfig(t, "version: 91.0.4472.164\n")

		// when
		settings, err := entities.LoadSettings(configPath)

		// then
		require.NoError(t, err)
		assert.Equal(t, "91.0.4472.164", settings.Version)
	})
}
