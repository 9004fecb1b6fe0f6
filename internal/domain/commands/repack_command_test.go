//go:build unit

package commands_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/upstreamsync/internal/domain/commands"
	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
	doubles "github.com/rios0rios0/upstreamsync/test/infrastructure/repositorydoubles"
)

func newRepackPlan() entities.RepackPlan {
	return entities.RepackPlan{
		IntermediateDir:       "gen/out",
		SharedIntermediateDir: "gen/shared",
		ExtraInputs:           []string{"gen/shared/components/strings/components_strings"},
	}
}

func TestRepackCommandExecute(t *testing.T) {
	t.Parallel()

	t.Run("should repack every locale through the compiler", func(t *testing.T) {
		// given
		compiler := &doubles.SpyResourceCompilerRepository{}
		cmd := commands.NewRepackCommand(compiler)
		tool := []string{"python3", "grit/pak_util.py", "repack"}

		// when
		outputs, err := cmd.Execute(context.Background(), commands.RepackOptions{
			Plan: newRepackPlan(), Tool: tool, Locales: []string{"de", "pt-BR"},
		})

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join("gen/out", "repack/qtwebengine_locales", "de.pak"),
			filepath.Join("gen/out", "repack/qtwebengine_locales", "pt-BR.pak"),
		}, outputs)
		require.Len(t, compiler.Calls, 2)
		assert.Equal(t, tool, compiler.Calls[0].Tool)
		assert.Equal(t, outputs[0], compiler.Calls[0].Output)
		assert.Len(t, compiler.Calls[0].Inputs, 4)
		assert.Equal(t, "gen/shared/components/strings/components_strings_de.pak", compiler.Calls[0].Inputs[3])
	})

	t.Run("should only list the inputs without running the compiler", func(t *testing.T) {
		// given
		compiler := &doubles.SpyResourceCompilerRepository{}
		cmd := commands.NewRepackCommand(compiler)

		// when
		inputs, err := cmd.Execute(context.Background(), commands.RepackOptions{
			Plan: newRepackPlan(), Locales: []string{"de", "fr"}, ListInputs: true,
		})

		// then
		require.NoError(t, err)
		assert.Len(t, inputs, 8)
		assert.Empty(t, compiler.Calls)
	})

	t.Run("should only list the outputs using the bundle layout", func(t *testing.T) {
		// given
		plan := newRepackPlan()
		plan.TargetOS = "mac"
		cmd := commands.NewRepackCommand(&doubles.SpyResourceCompilerRepository{})

		// when
		outputs, err := cmd.Execute(context.Background(), commands.RepackOptions{
			Plan: plan, Locales: []string{"en-US"}, ListOutputs: true,
		})

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join("gen/out", "repack/qtwebengine_locales", "en.lproj", "locale.pak")}, outputs)
	})

	t.Run("should reject invalid options", func(t *testing.T) {
		// given
		cmd := commands.NewRepackCommand(&doubles.SpyResourceCompilerRepository{})

		// when
		_, noLocales := cmd.Execute(context.Background(), commands.RepackOptions{Plan: newRepackPlan()})
		_, noDirs := cmd.Execute(context.Background(), commands.RepackOptions{Locales: []string{"de"}})
		_, bothLists := cmd.Execute(context.Background(), commands.RepackOptions{
			Plan: newRepackPlan(), Locales: []string{"de"}, ListInputs: true, ListOutputs: true,
		})

		// then
		assert.Error(t, noLocales)
		assert.Error(t, noDirs)
		assert.Error(t, bothLists)
	})

	t.Run("should return the outputs generated before a failure", func(t *testing.T) {
		// given
		compiler := &doubles.SpyResourceCompilerRepository{Err: errors.New("missing input")}
		cmd := commands.NewRepackCommand(compiler)

		// when
		outputs, err := cmd.Execute(context.Background(), commands.RepackOptions{
			Plan: newRepackPlan(), Tool: []string{"repack"}, Locales: []string{"de", "fr"},
		})

		// then
		require.Error(t, err)
		assert.Empty(t, outputs)
		assert.Len(t, compiler.Calls, 1)
	})
}
