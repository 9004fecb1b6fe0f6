package controllers

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
)

// VersionController handles the "get-version" subcommand.
type VersionController struct{}

// NewVersionController creates a new VersionController.
func NewVersionController() *VersionController {
	return &VersionController{}
}

// GetBind returns the Cobra command metadata for the version controller.
func (it *VersionController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "get-version",
		Short: "Print the targeted upstream version",
	}
}

// Execute prints the configured version.
func (it *VersionController) Execute(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if err = settings.RequireVersion(); err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), settings.Version)
	return err
}
