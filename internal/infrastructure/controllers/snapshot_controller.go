package controllers

import (
	"github.com/spf13/cobra"

	"github.com/rios0rios0/upstreamsync/internal/domain/commands"
	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
)

// SnapshotController handles the "take-snapshot" subcommand.
type SnapshotController struct {
	command commands.Snapshot
}

// NewSnapshotController creates a new SnapshotController.
func NewSnapshotController(command commands.Snapshot) *SnapshotController {
	return &SnapshotController{command: command}
}

// GetBind returns the Cobra command metadata for the snapshot controller.
func (it *SnapshotController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "take-snapshot",
		Short: "Export the upstream working copies into the snapshot",
		Long: `Replace the contents of the snapshot directory with the files tracked by
the upstream working copies and their checked out submodules.`,
	}
}

// Execute exports the snapshot.
func (it *SnapshotController) Execute(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	_, err = it.command.Execute(cmd.Context(), settings)
	return err
}
