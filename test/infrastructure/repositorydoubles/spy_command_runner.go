//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"strings"

	"github.com/rios0rios0/upstreamsync/internal/infrastructure/repositories/git"
)

// RunCall records a single invocation of Run.
type RunCall struct {
	Dir  string
	Name string
	Args []string
}

// Line renders the call as a command line.
func (c RunCall) Line() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// SpyCommandRunner implements git.CommandRunner. Outputs are matched on the
// first argument; RunFunc, when set, takes precedence.
type SpyCommandRunner struct {
	Outputs map[string]string
	Errs    map[string]error
	RunFunc func(dir, name string, args []string) (string, error)
	Calls   []RunCall
}

var _ git.CommandRunner = (*SpyCommandRunner)(nil)

func (s *SpyCommandRunner) Run(_ context.Context, dir, name string, args ...string) (string, error) {
	s.Calls = append(s.Calls, RunCall{Dir: dir, Name: name, Args: args})
	if s.RunFunc != nil {
		return s.RunFunc(dir, name, args)
	}
	key := name
	if len(args) > 0 {
		key = args[0]
	}
	return s.Outputs[key], s.Errs[key]
}

// LastLine returns the command line of the most recent call.
func (s *SpyCommandRunner) LastLine() string {
	if len(s.Calls) == 0 {
		return ""
	}
	return s.Calls[len(s.Calls)-1].Line()
}
