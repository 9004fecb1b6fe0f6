package controllers

import (
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/upstreamsync/internal/domain/entities"
)

const (
	configFlag  = "config"
	verboseFlag = "verbose"
)

// loadSettings reads the persistent --config and --verbose flags and loads the
// configuration they point to.
func loadSettings(cmd *cobra.Command) (*entities.Settings, error) {
	if verbose, _ := cmd.Flags().GetBool(verboseFlag); verbose {
		logger.SetLevel(logger.DebugLevel)
	}
	configPath, _ := cmd.Flags().GetString(configFlag)
	return entities.LoadSettings(configPath)
}
