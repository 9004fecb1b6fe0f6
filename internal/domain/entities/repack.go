package entities

import (
	"fmt"
	"path/filepath"
	"strings"
)

const localesDir = "repack/qtwebengine_locales"

// RepackPlan computes where the per-locale resource packs are read from and
// written to. The pack format itself belongs to the external compiler.
type RepackPlan struct {
	IntermediateDir       string
	SharedIntermediateDir string
	TargetOS              string   // mac and ios use bundle-style output paths
	ExtraInputs           []string // Pack paths without the "_<locale>.pak" suffix
}

// Validate checks that both intermediate directories are set.
func (p RepackPlan) Validate() error {
	if p.IntermediateDir == "" || p.SharedIntermediateDir == "" {
		return fmt.Errorf("both the intermediate and shared intermediate directories are required")
	}
	return nil
}

// OutputFor returns the pack generated for one locale.
func (p RepackPlan) OutputFor(locale string) string {
	if p.bundleLayout() {
		if locale == "en-US" {
			locale = "en"
		}
		return filepath.Join(
			p.IntermediateDir, localesDir, strings.ReplaceAll(locale, "-", "_")+".lproj", "locale.pak",
		)
	}
	return filepath.Join(p.IntermediateDir, localesDir, locale+".pak")
}

// InputsFor returns the packs merged into one locale's output.
func (p RepackPlan) InputsFor(locale string) []string {
	var inputs []string
	if p.TargetOS != "ios" {
		inputs = append(inputs,
			filepath.Join(p.SharedIntermediateDir, "webkit", "webkit_strings_"+locale+".pak"),
			filepath.Join(p.SharedIntermediateDir, "ui", "ui_strings", "ui_strings_"+locale+".pak"),
			filepath.Join(
				p.SharedIntermediateDir, "ui", "app_locale_settings", "app_locale_settings_"+locale+".pak",
			),
		)
	}
	for _, extra := range p.ExtraInputs {
		inputs = append(inputs, extra+"_"+locale+".pak")
	}
	return inputs
}

// ExpectedOutputs lists the generated packs for the given locales, in order.
func (p RepackPlan) ExpectedOutputs(locales []string) []string {
	outputs := make([]string, 0, len(locales))
	for _, locale := range locales {
		outputs = append(outputs, p.OutputFor(locale))
	}
	return outputs
}

// RequiredInputs lists every pack consumed for the given locales, in order.
func (p RepackPlan) RequiredInputs(locales []string) []string {
	var inputs []string
	for _, locale := range locales {
		inputs = append(inputs, p.InputsFor(locale)...)
	}
	return inputs
}

func (p RepackPlan) bundleLayout() bool {
	return p.TargetOS == "mac" || p.TargetOS == "ios"
}
