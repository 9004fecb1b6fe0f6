package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	logger "github.com/sirupsen/logrus"
)

// CommandRunner runs a program inside a directory and returns its standard output.
type CommandRunner interface {
	Run(ctx context.Context, dir, name string, args ...string) (string, error)
}

// ExecRunner runs programs as subprocesses. The directory is passed to the
// child process, the working directory of this process is left alone.
type ExecRunner struct{}

// NewExecRunner creates a new ExecRunner.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes name with args in dir.
func (r *ExecRunner) Run(ctx context.Context, dir, name string, args ...string) (string, error) {
	logger.Debugf("[%s] %s %s", dir, name, strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		return string(output), fmt.Errorf(
			"%s %s: %w\n%s", name, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()),
		)
	}
	return string(output), nil
}
