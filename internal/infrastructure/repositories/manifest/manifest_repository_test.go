//go:build unit

package manifest_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/upstreamsync/internal/infrastructure/repositories/manifest"
)

func newRepository() *manifest.Repository {
	repo := manifest.NewRepository()
	repo.Register(manifest.NewHCLDialect())
	repo.Register(manifest.NewDEPSDialect())
	return repo
}

func TestRepository(t *testing.T) {
	t.Parallel()

	t.Run("should register dialects in order", func(t *testing.T) {
		// given
		repo := newRepository()

		// when
		names := repo.Names()

		// then
		assert.Equal(t, []string{"hcl", "deps"}, names)
	})

	t.Run("should pick the dialect from the file name", func(t *testing.T) {
		// given
		repo := newRepository()
		dir := t.TempDir()
		hclPath := filepath.Join(dir, "deps.hcl")
		depsPath := filepath.Join(dir, ".DEPS.git")
		require.NoError(t, os.WriteFile(hclPath, []byte("deps = {\n  \"src/a\" = \"https://a\"\n}\n"), 0o600))
		require.NoError(t, os.WriteFile(depsPath, []byte("deps = {'src/a': 'https://a'}\n"), 0o600))

		// when
		fromHCL, hclErr := repo.Load(hclPath)
		fromDEPS, depsErr := repo.Load(depsPath)

		// then
		require.NoError(t, hclErr)
		require.NoError(t, depsErr)
		assert.Equal(t, fromHCL.Deps, fromDEPS.Deps)
	})

	t.Run("should return missing files as fs.ErrNotExist", func(t *testing.T) {
		// given
		repo := newRepository()

		// when
		_, err := repo.Load(filepath.Join(t.TempDir(), "DEPS"))

		// then
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})
}
