package controllers

import (
	"github.com/spf13/cobra"

	"github.com/rios0rios0/upstreamsync/internal/domain/commands"
	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
)

// InitializeController handles the "initialize" subcommand.
type InitializeController struct {
	command commands.Initialize
}

// NewInitializeController creates a new InitializeController.
func NewInitializeController(command commands.Initialize) *InitializeController {
	return &InitializeController{command: command}
}

// GetBind returns the Cobra command metadata for the initialize controller.
func (it *InitializeController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "initialize",
		Short: "Initialize the snapshot or the upstream working copies",
		Long: `Initialize the repository.

With --upstream the build tools and the primary upstream codebase are checked
out at the configured version, their nested dependencies are resolved and
checked out, and the patch series of the snapshot is applied on top (unless
--baseline-upstream is given). With --snapshot (the default) the snapshot
submodule is checked out.`,
	}
}

// Execute runs the initialization.
func (it *InitializeController) Execute(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	upstream, _ := cmd.Flags().GetBool("upstream")
	snapshot, _ := cmd.Flags().GetBool("snapshot")
	baseline, _ := cmd.Flags().GetBool("baseline-upstream")

	return it.command.Execute(cmd.Context(), settings, commands.InitializeOptions{
		Upstream:         upstream,
		Snapshot:         snapshot,
		BaselineUpstream: baseline,
	})
}

// AddFlags adds the initialize-specific flags to the given Cobra command.
func (it *InitializeController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("upstream", false, "Check out the upstream working copies")
	cmd.Flags().Bool("snapshot", false, "Check out the snapshot submodule")
	cmd.Flags().Bool("baseline-upstream", false, "Leave the upstream working copies unpatched")
	cmd.MarkFlagsMutuallyExclusive("upstream", "snapshot")
}
