package entities

import (
	"github.com/spf13/cobra"
)

// ControllerBind holds the Cobra metadata of a subcommand.
type ControllerBind struct {
	Use   string
	Short string
	Long  string
}

// Controller is implemented by every subcommand handler.
type Controller interface {
	GetBind() ControllerBind
	Execute(command *cobra.Command, arguments []string) error
}
