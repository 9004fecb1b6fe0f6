//go:build unit

package controllers_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

type controllerExecutor interface {
	Execute(cmd *cobra.Command, args []string) error
}

// newCobraCommand builds a command carrying the root's persistent flags and
// the controller's own flags, parsed from args.
func newCobraCommand(t *testing.T, controller controllerExecutor, args ...string) (*cobra.Command, *bytes.Buffer) {
	t.Helper()

	cmd := &cobra.Command{Use: "test"}
	cmd.PersistentFlags().StringP("config", "c", "", "config file")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "verbose")
	if flagged, ok := controller.(interface{ AddFlags(cmd *cobra.Command) }); ok {
		flagged.AddFlags(cmd)
	}
	require.NoError(t, cmd.ParseFlags(args))

	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetContext(context.Background())
	return cmd, out
}

// writeConfig writes a configuration file and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	location := filepath.Join(t.TempDir(), ".upstreamsync.yaml")
	require.NoError(t, os.WriteFile(location, []byte(content), 0o600))
	return location
}
