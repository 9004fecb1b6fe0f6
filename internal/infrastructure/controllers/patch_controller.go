package controllers

import (
	"github.com/spf13/cobra"

	"github.com/rios0rios0/upstreamsync/internal/domain/commands"
	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
)

// PatchController handles the "patch-upstream" subcommand.
type PatchController struct {
	command commands.Patch
}

// NewPatchController creates a new PatchController.
func NewPatchController(command commands.Patch) *PatchController {
	return &PatchController{command: command}
}

// GetBind returns the Cobra command metadata for the patch controller.
func (it *PatchController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "patch-upstream",
		Short: "Apply the snapshot's changes to the upstream working copies",
		Long: `Generate one patch per snapshot commit since the upstream baseline, route
each patch to the dependency it is annotated with, and apply the series to the
upstream working copies.

With --reset every upstream working copy is first returned to its baseline.`,
	}
}

// Execute runs the patch pipeline.
func (it *PatchController) Execute(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	reset, _ := cmd.Flags().GetBool("reset")
	return it.command.Execute(cmd.Context(), settings, commands.PatchOptions{Reset: reset})
}

// AddFlags adds the patch-specific flags to the given Cobra command.
func (it *PatchController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("reset", false, "Reset the upstream working copies to the baseline first")
}
