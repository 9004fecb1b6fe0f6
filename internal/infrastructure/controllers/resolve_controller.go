package controllers

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rios0rios0/upstreamsync/internal/domain/commands"
	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
)

// ResolveController handles the "resolve" subcommand.
type ResolveController struct {
	command commands.Resolve
}

// NewResolveController creates a new ResolveController.
func NewResolveController(command commands.Resolve) *ResolveController {
	return &ResolveController{command: command}
}

// GetBind returns the Cobra command metadata for the resolve controller.
func (it *ResolveController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "resolve [dir]",
		Short: "Print the reconciled dependencies of a checkout",
		Long: `Parse the manifest of a checkout (the primary upstream working copy by
default) together with the nested manifests it names, reconcile the records
and print one line per dependency: path, URL, revision and platforms.`,
	}
}

// Execute resolves and prints the dependencies.
func (it *ResolveController) Execute(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	dir := settings.PrimaryPath()
	if len(args) > 0 {
		dir = args[0]
	}

	resolution, err := it.command.Execute(cmd.Context(), settings, dir)
	if err != nil {
		return err
	}

	writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	for _, record := range resolution.Sorted() {
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\n", record.Path, record.URL, record.Revision(), record.PlatformLabel())
	}
	return writer.Flush()
}
