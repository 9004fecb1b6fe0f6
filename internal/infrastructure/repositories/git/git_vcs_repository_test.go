//go:build unit

package git_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
	"github.com/rios0rios0/upstreamsync/internal/infrastructure/repositories/git"
	doubles "github.com/rios0rios0/upstreamsync/test/infrastructure/repositorydoubles"
)

func TestVCSRepositoryCommands(t *testing.T) {
	t.Parallel()

	t.Run("should fetch a ref with a depth", func(t *testing.T) {
		// given
		runner := &doubles.SpyCommandRunner{}
		repo := git.NewVCSRepository(runner)

		// when
		err := repo.Fetch(context.Background(), "work", "origin", "refs/tags/1.0", 1)

		// then
		require.NoError(t, err)
		assert.Equal(t, "git fetch --depth=1 origin refs/tags/1.0", runner.LastLine())
		assert.Equal(t, "work", runner.Calls[0].Dir)
	})

	t.Run("should fetch the default refspecs without a ref", func(t *testing.T) {
		// given
		runner := &doubles.SpyCommandRunner{}
		repo := git.NewVCSRepository(runner)

		// when
		err := repo.Fetch(context.Background(), "work", "origin", "", 0)

		// then
		require.NoError(t, err)
		assert.Equal(t, "git fetch origin", runner.LastLine())
	})

	t.Run("should reset in the requested mode", func(t *testing.T) {
		// given
		runner := &doubles.SpyCommandRunner{}
		repo := git.NewVCSRepository(runner)

		// when
		err := repo.Reset(context.Background(), "work", entities.ResetHard, "abc")

		// then
		require.NoError(t, err)
		assert.Equal(t, "git reset -q --hard abc", runner.LastLine())
	})

	t.Run("should abort the pending operation", func(t *testing.T) {
		// given
		runner := &doubles.SpyCommandRunner{}
		repo := git.NewVCSRepository(runner)

		// when
		err := repo.Abort(context.Background(), "work", entities.OperationApply)

		// then
		require.NoError(t, err)
		assert.Equal(t, "git am --abort", runner.LastLine())
	})

	t.Run("should search the log for a bounded marker", func(t *testing.T) {
		// given
		runner := &doubles.SpyCommandRunner{Outputs: map[string]string{"log": "aaa\nbbb\n"}}
		repo := git.NewVCSRepository(runner)

		// when
		hashes, err := repo.Log(context.Background(), "work", "87.0.4280.144", 2)

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"aaa", "bbb"}, hashes)
		assert.Equal(t,
			`git log -n2 --format=%H --extended-regexp --grep=(^|[^[:alnum:].])87\.0\.4280\.144($|[^[:alnum:].]|\.($|[^[:alnum:]]))`,
			runner.LastLine(),
		)
	})

	t.Run("should leave the edges of a punctuated marker unbounded", func(t *testing.T) {
		// given
		runner := &doubles.SpyCommandRunner{}
		repo := git.NewVCSRepository(runner)

		// when
		_, err := repo.Log(context.Background(), "work", "-- baseline --", 1)

		// then
		require.NoError(t, err)
		assert.Equal(t, "git log -n1 --format=%H --extended-regexp --grep=-- baseline --", runner.LastLine())
	})

	t.Run("should read the gitlink revision from the index", func(t *testing.T) {
		// given
		runner := &doubles.SpyCommandRunner{Outputs: map[string]string{
			"ls-files": "160000 0123456789abcdef0123456789abcdef01234567 0\tthird_party/widget\n",
		}}
		repo := git.NewVCSRepository(runner)

		// when
		revision, err := repo.IndexRevision(context.Background(), "work", "third_party/widget")

		// then
		require.NoError(t, err)
		assert.Equal(t, "0123456789abcdef0123456789abcdef01234567", revision)
	})

	t.Run("should fail when the path is not a gitlink", func(t *testing.T) {
		// given
		runner := &doubles.SpyCommandRunner{Outputs: map[string]string{
			"ls-files": "100644 0123456789abcdef0123456789abcdef01234567 0\tREADME\n",
		}}
		repo := git.NewVCSRepository(runner)

		// when
		_, err := repo.IndexRevision(context.Background(), "work", "README")

		// then
		assert.Error(t, err)
	})

	t.Run("should split NUL separated tracked files", func(t *testing.T) {
		// given
		runner := &doubles.SpyCommandRunner{Outputs: map[string]string{"ls-files": "a.cc\x00dir/b c.h\x00"}}
		repo := git.NewVCSRepository(runner)

		// when
		files, err := repo.ListTrackedFiles(context.Background(), "work")

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"a.cc", "dir/b c.h"}, files)
	})

	t.Run("should apply a mailbox with a three-way merge and an absolute path", func(t *testing.T) {
		// given
		runner := &doubles.SpyCommandRunner{}
		repo := git.NewVCSRepository(runner)
		patch := filepath.Join(t.TempDir(), "0001-x.patch")

		// when
		err := repo.ApplyMailbox(context.Background(), "work", patch, 3)

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"am", "-3", "-p3", patch}, runner.Calls[0].Args)
	})

	t.Run("should return the generated patch files in order", func(t *testing.T) {
		// given
		outputDir := t.TempDir()
		runner := &doubles.SpyCommandRunner{RunFunc: func(_, _ string, args []string) (string, error) {
			for _, name := range []string{"0002-b.patch", "0001-a.patch", "notes.txt"} {
				if err := os.WriteFile(filepath.Join(args[3], name), nil, 0o600); err != nil {
					return "", err
				}
			}
			return "", nil
		}}
		repo := git.NewVCSRepository(runner)

		// when
		files, err := repo.FormatPatch(context.Background(), "snapshot", "base", outputDir)

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(outputDir, "0001-a.patch"),
			filepath.Join(outputDir, "0002-b.patch"),
		}, files)
	})
}

func TestVCSRepositoryPendingOperations(t *testing.T) {
	t.Parallel()

	t.Run("should report the markers found in the git dir", func(t *testing.T) {
		// given
		dir := t.TempDir()
		gitDir := filepath.Join(dir, ".git")
		require.NoError(t, os.MkdirAll(filepath.Join(gitDir, "rebase-apply"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(gitDir, "MERGE_HEAD"), []byte("abc\n"), 0o600))
		runner := &doubles.SpyCommandRunner{Outputs: map[string]string{"rev-parse": ".git\n"}}
		repo := git.NewVCSRepository(runner)

		// when
		pending, err := repo.PendingOperations(context.Background(), dir)

		// then
		require.NoError(t, err)
		assert.True(t, pending.MergeHead)
		assert.False(t, pending.RebaseMerge)
		assert.True(t, pending.RebaseApply)
	})
}

func TestVCSRepositoryListSubmodules(t *testing.T) {
	t.Parallel()

	t.Run("should decode paths, urls and platforms", func(t *testing.T) {
		// given
		dir := t.TempDir()
		content := "[submodule \"chromium\"]\n" +
			"\tpath = chromium\n" +
			"\turl = https://example.com/chromium.git\n" +
			"[submodule \"cygwin\"]\n" +
			"\tpath = third_party/cygwin/\n" +
			"\turl = https://example.com/cygwin.git\n" +
			"\tos = win, android\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitmodules"), []byte(content), 0o600))
		repo := git.NewVCSRepository(&doubles.SpyCommandRunner{})

		// when
		records, err := repo.ListSubmodules(context.Background(), dir)

		// then
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "chromium", records[0].Path)
		assert.Empty(t, records[0].Platforms)
		assert.False(t, records[0].FromManifest)
		assert.Equal(t, "third_party/cygwin", records[1].Path)
		assert.Equal(t, "https://example.com/cygwin.git", records[1].URL)
		assert.Equal(t, []string{"win", "android"}, records[1].Platforms)
	})

	t.Run("should return nothing without a .gitmodules file", func(t *testing.T) {
		// given
		repo := git.NewVCSRepository(&doubles.SpyCommandRunner{})

		// when
		records, err := repo.ListSubmodules(context.Background(), t.TempDir())

		// then
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestVCSRepositoryCurrentRevision(t *testing.T) {
	t.Parallel()

	t.Run("should read HEAD of a repository", func(t *testing.T) {
		// given
		dir := t.TempDir()
		repository, err := gogit.PlainInit(dir, false)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "README"), []byte("hello\n"), 0o600))
		worktree, err := repository.Worktree()
		require.NoError(t, err)
		_, err = worktree.Add("README")
		require.NoError(t, err)
		hash, err := worktree.Commit("initial", &gogit.CommitOptions{
			Author: &object.Signature{Name: "Dev", Email: "dev@example.com", When: time.Now()},
		})
		require.NoError(t, err)
		repo := git.NewVCSRepository(&doubles.SpyCommandRunner{})

		// when
		revision, err := repo.CurrentRevision(context.Background(), dir)

		// then
		require.NoError(t, err)
		assert.Equal(t, hash.String(), revision)
	})

	t.Run("should fail outside of a repository", func(t *testing.T) {
		// given
		repo := git.NewVCSRepository(&doubles.SpyCommandRunner{})

		// when
		_, err := repo.CurrentRevision(context.Background(), t.TempDir())

		// then
		assert.Error(t, err)
	})
}

func TestVCSRepositoryLog(t *testing.T) {
	t.Parallel()

	commitAll := func(t *testing.T, dir string, messages ...string) []string {
		t.Helper()
		repository, err := gogit.PlainInit(dir, false)
		require.NoError(t, err)
		worktree, err := repository.Worktree()
		require.NoError(t, err)

		when := time.Date(2014, time.January, 1, 0, 0, 0, 0, time.UTC)
		hashes := make([]string, 0, len(messages))
		for i, message := range messages {
			require.NoError(t, os.WriteFile(filepath.Join(dir, "VERSION"), []byte(message), 0o600))
			_, err = worktree.Add("VERSION")
			require.NoError(t, err)
			hash, commitErr := worktree.Commit(message, &gogit.CommitOptions{
				Author: &object.Signature{
					Name: "Dev", Email: "dev@example.com", When: when.Add(time.Duration(i) * time.Hour),
				},
			})
			require.NoError(t, commitErr)
			hashes = append(hashes, hash.String())
		}
		return hashes
	}

	t.Run("should not match an ordinal marker inside a longer ordinal", func(t *testing.T) {
		// given
		if _, err := exec.LookPath("git"); err != nil {
			t.Skip("git is not installed")
		}
		dir := t.TempDir()
		hashes := commitAll(t, dir,
			"git-svn-id: svn://svn.chromium.org/chrome/trunk/src@12345 0039d316",
			"git-svn-id: svn://svn.chromium.org/chrome/trunk/src@123456 0039d316",
		)
		repo := git.NewVCSRepository(git.NewExecRunner())

		// when
		found, err := repo.Log(context.Background(), dir, "@12345", 1)

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{hashes[0]}, found)
	})

	t.Run("should not match a version marker inside a longer version", func(t *testing.T) {
		// given
		if _, err := exec.LookPath("git"); err != nil {
			t.Skip("git is not installed")
		}
		dir := t.TempDir()
		hashes := commitAll(t, dir,
			"Update Chromium to 33.0.1750.17.",
			"Update Chromium to 33.0.1750.170",
			"Update Chromium to 133.0.1750.17",
			"Update Chromium to 33.0.1750.17.2",
		)
		repo := git.NewVCSRepository(git.NewExecRunner())

		// when
		found, err := repo.Log(context.Background(), dir, "33.0.1750.17", 5)

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{hashes[0]}, found)
	})
}
