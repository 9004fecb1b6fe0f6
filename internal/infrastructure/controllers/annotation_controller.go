package controllers

import (
	"github.com/spf13/cobra"

	"github.com/rios0rios0/upstreamsync/internal/domain/commands"
	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
)

// AnnotationController handles the "check-patch-annotations" subcommand.
type AnnotationController struct {
	command commands.Annotation
}

// NewAnnotationController creates a new AnnotationController.
func NewAnnotationController(command commands.Annotation) *AnnotationController {
	return &AnnotationController{command: command}
}

// GetBind returns the Cobra command metadata for the annotation controller.
func (it *AnnotationController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "check-patch-annotations",
		Short: "Report patches touching files outside their annotated dependency",
		Long: `Regenerate the patch series and compare each patch's owner annotation with
the dependencies owning the files it changes. Mismatches are reported as
warnings and do not fail the command.`,
	}
}

// Execute runs the check. Mismatches are logged by the command itself.
func (it *AnnotationController) Execute(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	_, err = it.command.Execute(cmd.Context(), settings)
	return err
}
