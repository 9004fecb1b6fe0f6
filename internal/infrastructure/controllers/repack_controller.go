package controllers

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rios0rios0/upstreamsync/internal/domain/commands"
	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
)

// RepackController handles the "repack-locales" subcommand.
type RepackController struct {
	command commands.Repack
}

// NewRepackController creates a new RepackController.
func NewRepackController(command commands.Repack) *RepackController {
	return &RepackController{command: command}
}

// GetBind returns the Cobra command metadata for the repack controller.
func (it *RepackController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "repack-locales [locales...]",
		Short: "Merge the per-locale resource packs",
		Long: `Merge the generated string and settings packs of every given locale into
one locale pack, or only list the packs read (--list-inputs) or written
(--list-outputs).`,
	}
}

// Execute repacks or lists the packs of the given locales.
func (it *RepackController) Execute(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	intermediate, _ := flags.GetString("intermediate-dir")
	shared, _ := flags.GetString("shared-intermediate-dir")
	targetOS, _ := flags.GetString("target-os")
	extras, _ := flags.GetStringArray("extra-input")
	tool, _ := flags.GetStringArray("tool")
	listInputs, _ := flags.GetBool("list-inputs")
	listOutputs, _ := flags.GetBool("list-outputs")

	if len(tool) == 0 && !listInputs && !listOutputs {
		settings, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		tool = settings.RepackTool()
	}

	paths, err := it.command.Execute(cmd.Context(), commands.RepackOptions{
		Plan: entities.RepackPlan{
			IntermediateDir:       intermediate,
			SharedIntermediateDir: shared,
			TargetOS:              targetOS,
			ExtraInputs:           extras,
		},
		Tool:        tool,
		Locales:     args,
		ListInputs:  listInputs,
		ListOutputs: listOutputs,
	})
	if err != nil {
		return err
	}

	if listInputs || listOutputs {
		for _, path := range paths {
			if _, printErr := fmt.Fprintln(cmd.OutOrStdout(), path); printErr != nil {
				return printErr
			}
		}
	}
	return nil
}

// AddFlags adds the repack-specific flags to the given Cobra command.
func (it *RepackController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("intermediate-dir", "i", "", "Directory the locale packs are written to")
	cmd.Flags().StringP("shared-intermediate-dir", "s", "", "Directory holding the generated string packs")
	cmd.Flags().StringP("target-os", "x", "", "Target operating system (mac and ios use bundle paths)")
	cmd.Flags().StringArrayP("extra-input", "e", nil, "Additional pack path, without the _<locale>.pak suffix")
	cmd.Flags().StringArray("tool", nil, "Resource compiler command line (default: from the config)")
	cmd.Flags().Bool("list-inputs", false, "Only print the packs read")
	cmd.Flags().Bool("list-outputs", false, "Only print the packs written")
	cmd.MarkFlagsMutuallyExclusive("list-inputs", "list-outputs")
}
