//go:build unit

package entities_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
)

func TestRepackPlan(t *testing.T) {
	t.Parallel()

	t.Run("should use flat pack names on linux", func(t *testing.T) {
		// given
		plan := entities.RepackPlan{IntermediateDir: "out", SharedIntermediateDir: "gen", TargetOS: "linux"}

		// when
		outputs := plan.ExpectedOutputs([]string{"de", "en-US"})

		// then
		assert.Equal(t, []string{
			filepath.Join("out", "repack", "qtwebengine_locales", "de.pak"),
			filepath.Join("out", "repack", "qtwebengine_locales", "en-US.pak"),
		}, outputs)
	})

	t.Run("should use bundle paths on mac", func(t *testing.T) {
		// given
		plan := entities.RepackPlan{IntermediateDir: "out", SharedIntermediateDir: "gen", TargetOS: "mac"}

		// when
		outputs := plan.ExpectedOutputs([]string{"en-US", "pt-BR"})

		// then
		assert.Equal(t, []string{
			filepath.Join("out", "repack", "qtwebengine_locales", "en.lproj", "locale.pak"),
			filepath.Join("out", "repack", "qtwebengine_locales", "pt_BR.lproj", "locale.pak"),
		}, outputs)
	})

	t.Run("should list the string packs and extra inputs of a locale", func(t *testing.T) {
		// given
		plan := entities.RepackPlan{
			IntermediateDir:       "out",
			SharedIntermediateDir: "gen",
			ExtraInputs:           []string{"gen/extra/strings"},
		}

		// when
		inputs := plan.RequiredInputs([]string{"de"})

		// then
		assert.Equal(t, []string{
			filepath.Join("gen", "webkit", "webkit_strings_de.pak"),
			filepath.Join("gen", "ui", "ui_strings", "ui_strings_de.pak"),
			filepath.Join("gen", "ui", "app_locale_settings", "app_locale_settings_de.pak"),
			"gen/extra/strings_de.pak",
		}, inputs)
	})

	t.Run("should only use the extra inputs on ios", func(t *testing.T) {
		// given
		plan := entities.RepackPlan{
			IntermediateDir:       "out",
			SharedIntermediateDir: "gen",
			TargetOS:              "ios",
			ExtraInputs:           []string{"gen/extra/strings"},
		}

		// when
		inputs := plan.InputsFor("fr")

		// then
		assert.Equal(t, []string{"gen/extra/strings_fr.pak"}, inputs)
	})

	t.Run("should require both intermediate directories", func(t *testing.T) {
		// given
		plan := entities.RepackPlan{IntermediateDir: "out"}

		// when
		err := plan.Validate()

		// then
		assert.Error(t, err)
	})
}
